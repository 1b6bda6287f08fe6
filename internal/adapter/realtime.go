package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/models"
)

// realtimeRedialDelay is how long the subscription loop waits before
// re-dialing a dropped connection.
const realtimeRedialDelay = 5 * time.Second

// realtimeMessage is the websocket wire frame of the push backend. Each
// report lives under its id in a remote tree: uploads are per-record "put"
// writes, and the server broadcasts a "snapshot" of the full current tree on
// every change event.
type realtimeMessage struct {
	Op      string                   `json:"op"`
	ID      string                   `json:"id,omitempty"`
	Report  *models.Report           `json:"report,omitempty"`
	Reports map[string]models.Report `json:"reports,omitempty"`
}

const (
	realtimeOpPut      = "put"
	realtimeOpSnapshot = "snapshot"
)

// realtimeStore is the push-based [RemoteStore]. Besides upload/download it
// implements [Subscriber]: a long-lived connection delivers the full remote
// tree on every change, making polling unnecessary while subscribed.
type realtimeStore struct {
	url     string
	timeout time.Duration

	mu   sync.Mutex
	conn *websocket.Conn // live subscription connection, nil otherwise

	logger *logger.Logger
}

// NewRealtimeStore constructs the websocket push [RemoteStore].
func NewRealtimeStore(settings models.SyncSettings, timeout time.Duration, log *logger.Logger) (RemoteStore, error) {
	wsURL := strings.TrimSpace(settings.RealtimeURL)
	if wsURL == "" {
		return nil, fmt.Errorf("%w: realtime url is required", ErrConfiguration)
	}

	return &realtimeStore{url: wsURL, timeout: timeout, logger: log}, nil
}

// Upload implements [RemoteStore]. Each record is written individually under
// its id; the backend folds the writes into its tree and broadcasts the
// resulting snapshot to all subscribers.
func (r *realtimeStore) Upload(ctx context.Context, reports []models.Report) error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()

	ephemeral := conn == nil
	if ephemeral {
		var err error
		conn, err = r.dial(ctx)
		if err != nil {
			return err
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
	}

	for i := range reports {
		msg := realtimeMessage{Op: realtimeOpPut, ID: reports[i].ID, Report: &reports[i]}
		if err := r.write(ctx, conn, msg); err != nil {
			return fmt.Errorf("realtime put %s: %w", reports[i].ID, err)
		}
	}

	return nil
}

// Download implements [RemoteStore]. It dials, waits for the first snapshot
// the backend sends on connect, and returns the tree as the remote set.
func (r *realtimeStore) Download(ctx context.Context) ([]models.Report, error) {
	conn, err := r.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	readCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msg, err := r.read(readCtx, conn)
	if err != nil {
		return nil, fmt.Errorf("realtime download: %w", err)
	}
	if msg.Op != realtimeOpSnapshot {
		return nil, fmt.Errorf("%w: expected snapshot, got %q", ErrParse, msg.Op)
	}

	return treeToReports(msg.Reports), nil
}

// Subscribe implements [Subscriber]. The listener goroutine delivers every
// snapshot to onChange and re-dials dropped connections until stop is called.
// stop is synchronous and idempotent.
func (r *realtimeStore) Subscribe(ctx context.Context, onChange func([]models.Report)) (func(), error) {
	conn, err := r.dial(ctx)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	r.setConn(conn)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.listen(subCtx, conn, onChange)
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			r.closeConn()
			wg.Wait()
		})
	}
	return stop, nil
}

func (r *realtimeStore) listen(ctx context.Context, conn *websocket.Conn, onChange func([]models.Report)) {
	for {
		msg, err := r.read(ctx, conn)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			r.logger.Warn().Err(err).Msg("realtime subscription dropped, re-dialing")
			conn = r.redial(ctx)
			if conn == nil {
				return
			}
			continue
		}

		if msg.Op == realtimeOpSnapshot {
			onChange(treeToReports(msg.Reports))
		}
	}
}

// redial attempts to re-establish the subscription connection, waiting
// realtimeRedialDelay between attempts. Returns nil once ctx is cancelled.
func (r *realtimeStore) redial(ctx context.Context) *websocket.Conn {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(realtimeRedialDelay):
		}

		conn, err := r.dial(ctx)
		if err == nil {
			r.setConn(conn)
			return conn
		}
		r.logger.Warn().Err(err).Msg("realtime re-dial failed")
	}
}

func (r *realtimeStore) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("realtime dial: %w", wrapTransport(err))
	}
	return conn, nil
}

func (r *realtimeStore) write(ctx context.Context, conn *websocket.Conn, msg realtimeMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode realtime message: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err = conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		return wrapTransport(err)
	}
	return nil
}

func (r *realtimeStore) read(ctx context.Context, conn *websocket.Conn) (realtimeMessage, error) {
	var msg realtimeMessage

	_, data, err := conn.Read(ctx)
	if err != nil {
		return msg, wrapTransport(err)
	}
	if err = json.Unmarshal(data, &msg); err != nil {
		return msg, wrapParse(err)
	}
	return msg, nil
}

func (r *realtimeStore) setConn(conn *websocket.Conn) {
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
}

func (r *realtimeStore) closeConn() {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
}

func treeToReports(tree map[string]models.Report) []models.Report {
	reports := make([]models.Report, 0, len(tree))
	for _, rep := range tree {
		reports = append(reports, rep)
	}
	return reports
}
