package pms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/grandpine/hotel-concierge/pkg/logging"
)

const defaultTimeout = 30 * time.Second

// Config controls how the QloApps client behaves.
type Config struct {
	BaseURL    string
	APIKey     string // webservice key, sent as ws_key
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client talks to a QloApps instance over its REST webservice.
//
// Endpoints used:
//   - GET  /rooms?date_from=...&date_to=...&occupancy=N
//   - POST /bookings
//   - GET  /bookings/{confirmation}
//   - DELETE /bookings/{confirmation}
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient creates a configured QloApps client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("pms: base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("pms: webservice key is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type roomsResponse struct {
	Rooms []struct {
		ID          json.Number `json:"id"`
		Name        string      `json:"name"`
		Description string      `json:"description"`
		Price       float64     `json:"price"`
		MaxGuests   int         `json:"max_guests"`
		Amenities   []string    `json:"amenities"`
		Available   int         `json:"available"`
	} `json:"rooms"`
}

// CheckAvailability queries QloApps for rooms available over the stay.
func (c *Client) CheckAvailability(ctx context.Context, checkIn, checkOut string, guests int) ([]RoomOffer, error) {
	params := url.Values{}
	params.Set("date_from", checkIn)
	params.Set("date_to", checkOut)
	params.Set("occupancy", strconv.Itoa(guests))
	params.Set("ws_key", c.apiKey)
	params.Set("output_format", "JSON")

	var parsed roomsResponse
	if err := c.do(ctx, http.MethodGet, "/rooms?"+params.Encode(), nil, &parsed); err != nil {
		return nil, err
	}

	nights := stayNights(checkIn, checkOut)
	offers := make([]RoomOffer, 0, len(parsed.Rooms))
	for _, room := range parsed.Rooms {
		offer := RoomOffer{
			ID:             room.ID.String(),
			Name:           room.Name,
			Description:    room.Description,
			PricePerNight:  room.Price,
			MaxGuests:      room.MaxGuests,
			Amenities:      room.Amenities,
			AvailableCount: room.Available,
		}
		if nights > 0 {
			offer.TotalPrice = offer.PricePerNight * float64(nights)
		}
		offers = append(offers, offer)
	}

	c.logger.Info("pms: availability checked",
		"check_in", checkIn,
		"check_out", checkOut,
		"guests", guests,
		"offers", len(offers),
	)
	return offers, nil
}

type bookingPayload struct {
	Booking struct {
		RoomID     string `json:"id_room"`
		DateFrom   string `json:"date_from"`
		DateTo     string `json:"date_to"`
		CustomerID string `json:"id_customer"`
		Customer   struct {
			FirstName string `json:"firstname"`
			LastName  string `json:"lastname"`
			Email     string `json:"email"`
			Phone     string `json:"phone"`
		} `json:"customer"`
		TotalRooms int    `json:"total_rooms"`
		Occupancy  int    `json:"occupancy"`
		Comment    string `json:"comment"`
	} `json:"booking"`
}

type bookingResponse struct {
	Booking struct {
		ID                 string `json:"id"`
		Status             string `json:"status"`
		ConfirmationNumber string `json:"confirmation_number"`
		Room               string `json:"room"`
		GuestName          string `json:"guest_name"`
		CheckIn            string `json:"check_in"`
		CheckOut           string `json:"check_out"`
	} `json:"booking"`
}

// CreateBooking posts a booking to QloApps and returns its confirmation number.
func (c *Client) CreateBooking(ctx context.Context, guest GuestBooking, roomID string) (string, error) {
	if err := guest.validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(roomID) == "" {
		return "", errors.New("pms: room id is required")
	}

	firstName, lastName := splitGuestName(guest.GuestName)

	var payload bookingPayload
	payload.Booking.RoomID = roomID
	payload.Booking.DateFrom = guest.CheckIn
	payload.Booking.DateTo = guest.CheckOut
	payload.Booking.CustomerID = "new"
	payload.Booking.Customer.FirstName = firstName
	payload.Booking.Customer.LastName = lastName
	payload.Booking.Customer.Email = guest.GuestEmail
	payload.Booking.Customer.Phone = guest.GuestPhone
	payload.Booking.TotalRooms = 1
	payload.Booking.Occupancy = guest.GuestCount
	payload.Booking.Comment = guest.SpecialRequests

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("pms: failed to encode booking: %w", err)
	}

	var parsed bookingResponse
	if err := c.do(ctx, http.MethodPost, "/bookings?ws_key="+url.QueryEscape(c.apiKey), body, &parsed); err != nil {
		return "", err
	}

	confirmation := parsed.Booking.ConfirmationNumber
	if confirmation == "" {
		confirmation = parsed.Booking.ID
	}
	if confirmation == "" {
		return "", errors.New("pms: booking response missing confirmation number")
	}

	c.logger.Info("pms: booking created", "confirmation", confirmation, "room_id", roomID)
	return confirmation, nil
}

// GetBooking looks up a booking by confirmation number.
func (c *Client) GetBooking(ctx context.Context, confirmationNumber string) (*BookingRecord, error) {
	if strings.TrimSpace(confirmationNumber) == "" {
		return nil, errors.New("pms: confirmation number is required")
	}

	var parsed bookingResponse
	path := "/bookings/" + url.PathEscape(confirmationNumber) + "?ws_key=" + url.QueryEscape(c.apiKey)
	err := c.do(ctx, http.MethodGet, path, nil, &parsed)
	if err != nil {
		var httpErr *apiError
		if errors.As(err, &httpErr) && httpErr.status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &BookingRecord{
		ConfirmationNumber: confirmationNumber,
		Status:             parsed.Booking.Status,
		RoomName:           parsed.Booking.Room,
		GuestName:          parsed.Booking.GuestName,
		CheckIn:            parsed.Booking.CheckIn,
		CheckOut:           parsed.Booking.CheckOut,
	}, nil
}

// CancelBooking cancels an existing booking.
func (c *Client) CancelBooking(ctx context.Context, confirmationNumber string) error {
	if strings.TrimSpace(confirmationNumber) == "" {
		return errors.New("pms: confirmation number is required")
	}
	path := "/bookings/" + url.PathEscape(confirmationNumber) + "?ws_key=" + url.QueryEscape(c.apiKey)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	c.logger.Info("pms: booking cancelled", "confirmation", confirmationNumber)
	return nil
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("pms: unexpected status %d: %s", e.status, e.body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("pms: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pms: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("pms: failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{status: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("pms: failed to decode response: %w", err)
	}
	return nil
}

func (g GuestBooking) validate() error {
	if strings.TrimSpace(g.GuestName) == "" {
		return errors.New("pms: guest name is required")
	}
	if strings.TrimSpace(g.GuestEmail) == "" {
		return errors.New("pms: guest email is required")
	}
	if strings.TrimSpace(g.GuestPhone) == "" {
		return errors.New("pms: guest phone is required")
	}
	for _, d := range []string{g.CheckIn, g.CheckOut} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("pms: invalid stay date %q: %w", d, err)
		}
	}
	if g.GuestCount <= 0 {
		return errors.New("pms: guest count must be positive")
	}
	return nil
}

func splitGuestName(full string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

func stayNights(checkIn, checkOut string) int {
	in, err1 := time.Parse("2006-01-02", checkIn)
	out, err2 := time.Parse("2006-01-02", checkOut)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}
