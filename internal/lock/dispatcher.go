package lock

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hospilock/hospilock-api/internal/infrastructure/logging"
)

// StateChange describes a confirmed lock transition, published to sinks
// after the device acknowledged the command and the record was updated.
type StateChange struct {
	LockID int       `json:"id"`
	Email  string    `json:"email,omitempty"`
	IP     string    `json:"ip"`
	Status int       `json:"status"`
	At     time.Time `json:"at"`
}

// EventSink receives confirmed state changes. Implementations must not
// block; slow consumers drop or queue on their own side.
type EventSink interface {
	LockStateChanged(change StateChange)
}

// Dispatcher sends lock and unlock commands to door controllers over
// their local HTTP interface and records the outcome.
type Dispatcher struct {
	registry Registry
	client   *http.Client
	port     int
	sinks    []EventSink
	logger   *logging.Logger
}

// NewDispatcher creates a dispatcher. Every device listens on the same
// port; timeout bounds the full request including connection setup.
func NewDispatcher(registry Registry, port int, timeout time.Duration, logger *logging.Logger, sinks ...EventSink) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		client:   &http.Client{Timeout: timeout},
		port:     port,
		sinks:    sinks,
		logger:   logger,
	}
}

// Execute resolves the user's lock, forwards the command to the device
// and, only once the device acknowledges, toggles the stored status. A
// failed or unacknowledged command leaves the record untouched.
func (d *Dispatcher) Execute(ctx context.Context, email string, cmd Command) (*Lock, error) {
	l, err := d.registry.GetByOwnerEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if l.IP == "" {
		return nil, ErrNoLock
	}

	if err := d.send(ctx, l.IP, cmd); err != nil {
		d.logger.Warn("lock command failed",
			"lock_id", l.ID,
			"ip", l.IP,
			"command", string(cmd),
			"error", err)
		return nil, err
	}

	// A confirmed 2xx means the bolt moved, so the stored status
	// strictly flips from its last known-good value.
	status := StatusLocked
	if l.Locked() {
		status = StatusUnlocked
	}
	if err := d.registry.SetStatus(ctx, l.ID, status); err != nil {
		return nil, err
	}
	l.Status = status

	d.logger.Info("lock command confirmed",
		"lock_id", l.ID,
		"command", string(cmd),
		"status", status)

	change := StateChange{
		LockID: l.ID,
		Email:  l.OwnerEmail,
		IP:     l.IP,
		Status: status,
		At:     time.Now().UTC(),
	}
	for _, sink := range d.sinks {
		sink.LockStateChanged(change)
	}
	return l, nil
}

// send performs the device round trip. Controllers expect a bodyless
// JSON POST and answer 200 once the bolt has moved.
func (d *Dispatcher) send(ctx context.Context, ip string, cmd Command) error {
	url := fmt.Sprintf("http://%s:%d/%s", ip, d.port, cmd)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("building device request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: device returned %d", ErrDeviceUnavailable, resp.StatusCode)
	}
	return nil
}
