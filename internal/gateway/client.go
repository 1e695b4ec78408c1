package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/slotbook/internal/booking"
)

// Credential is the bearer token returned by a successful login. It is
// passed explicitly to every authenticated call; there is no
// process-wide default, so concurrent sessions never observe each
// other's token. Whoever owns the session owns attach/clear.
type Credential string

// Client talks to the scheduling API. Base URL includes the /api prefix,
// e.g. "http://localhost:5000/api".
type Client struct {
	base string
	hc   *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  booking.User `json:"user"`
	Token string       `json:"token"`
}

// Login exchanges credentials for a user and a bearer token. Any 4xx is
// reported as an auth failure; the server does not distinguish unknown
// users from wrong passwords and neither do we.
func (c *Client) Login(ctx context.Context, username, password string) (booking.User, Credential, error) {
	var out loginResponse
	err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", loginRequest{Username: username, Password: password}, &out)
	if err != nil {
		var ge *Error
		if errors.As(err, &ge) && ge.Status >= 400 && ge.Status < 500 {
			return booking.User{}, "", &Error{Code: CodeAuth, Op: "login", Message: "invalid credentials", Status: ge.Status, Err: ge.Err}
		}
		return booking.User{}, "", err
	}
	return out.User, Credential(out.Token), nil
}

// FetchAvailability lists the published dates for one month, ordered as
// the server returns them.
func (c *Client) FetchAvailability(ctx context.Context, cred Credential, year, month int) ([]booking.AvailableDate, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	var out []booking.AvailableDate
	if err := c.do(ctx, "fetch availability", http.MethodGet, "/availability?"+q.Encode(), cred, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type createBookingRequest struct {
	AvailabilityID string           `json:"availabilityId"`
	TimeSlot       booking.SlotSpan `json:"timeSlot"`
	Date           string           `json:"date"`
}

// CreateBooking books one slot against a fetched availability record.
// A 409 means someone else took the slot between fetch and booking.
func (c *Client) CreateBooking(ctx context.Context, cred Credential, availabilityID string, slot booking.SlotSpan, date string) (booking.Booking, error) {
	var out booking.Booking
	req := createBookingRequest{AvailabilityID: availabilityID, TimeSlot: slot, Date: date}
	if err := c.do(ctx, "create booking", http.MethodPost, "/bookings", cred, req, &out); err != nil {
		return booking.Booking{}, err
	}
	return out, nil
}

// PublishAvailability is the administrative side of the contract; the
// booking flow never calls it. Input is validated before it goes on the
// wire so a malformed payload fails fast with a validation error.
func (c *Client) PublishAvailability(ctx context.Context, cred Credential, date string, slots []booking.SlotSpan) (booking.AvailableDate, error) {
	req := booking.PublishRequest{Date: date, TimeSlots: slots}
	if err := booking.ValidatePublish(req); err != nil {
		return booking.AvailableDate{}, &Error{Code: CodeValidation, Op: "publish availability", Message: err.Error(), Err: err}
	}
	var out booking.AvailableDate
	if err := c.do(ctx, "publish availability", http.MethodPost, "/availability", cred, req, &out); err != nil {
		return booking.AvailableDate{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, cred Credential, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Code: CodeValidation, Op: op, Message: "encode request", Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return &Error{Code: CodeNetwork, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if cred != "" {
		req.Header.Set("Authorization", "Bearer "+string(cred))
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return &Error{Code: CodeNetwork, Op: op, Err: err}
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return &Error{Code: CodeNetwork, Op: op, Err: err}
	}
	if res.StatusCode >= 400 {
		return statusError(op, res.StatusCode, b)
	}
	if out != nil && len(b) > 0 {
		if err := json.Unmarshal(b, out); err != nil {
			return &Error{Code: CodeServer, Op: op, Message: "decode response", Status: res.StatusCode, Err: err}
		}
	}
	return nil
}

func statusError(op string, status int, body []byte) *Error {
	// the API puts a human-readable detail in a message field
	var r struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &r)

	code := CodeServer
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = CodeAuth
	case http.StatusConflict:
		code = CodeConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = CodeValidation
	case http.StatusNotFound:
		code = CodeNotFound
	}
	msg := r.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Code: code, Op: op, Message: msg, Status: status}
}
