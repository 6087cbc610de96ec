package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// AuditConsumer listens to the booking queues and appends one line per
// event to a log file.
type AuditConsumer struct {
    URL     string
    LogPath string
    Log     *zap.Logger

    mu sync.Mutex // serializes file appends
}

// NewAuditConsumer builds a consumer writing to logPath.
func NewAuditConsumer(url, logPath string, log *zap.Logger) *AuditConsumer {
    if log == nil {
        log = zap.NewNop()
    }
    return &AuditConsumer{URL: url, LogPath: logPath, Log: log}
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Lost
// connections are re-dialed with exponential backoff capped at 30s.
func (c *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.Warn("booking-consumer: failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return nil
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return nil
        }
        c.Log.Warn("booking-consumer: consume loop ended; reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return nil
        }
    }
}

func (c *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.Warn("booking-consumer: set QoS failed", zap.Error(err))
    }
    if err := declareQueues(ch); err != nil {
        return err
    }

    deliveries := make(chan amqp.Delivery)
    var wg sync.WaitGroup
    for _, name := range []string{QueueBookingCreated, QueueBookingCancelled} {
        msgs, err := ch.Consume(name, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", name, err)
        }
        wg.Add(1)
        go func() {
            defer wg.Done()
            for d := range msgs {
                select {
                case deliveries <- d:
                case <-ctx.Done():
                    return
                }
            }
        }()
    }
    done := make(chan struct{})
    go func() { wg.Wait(); close(done) }()

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-done:
            return errors.New("deliveries channel closed")
        case d := <-deliveries:
            if err := c.HandleMessage(d.Body); err != nil {
                c.Log.Error("booking-consumer: handle message failed", zap.Error(err))
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one event and appends its audit line.
func (c *AuditConsumer) HandleMessage(body []byte) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := FormatAuditLine(ev)

    c.mu.Lock()
    defer c.mu.Unlock()
    if dir := filepath.Dir(c.LogPath); dir != "" {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return fmt.Errorf("mkdir logs: %w", err)
        }
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatAuditLine renders an event as a single human-friendly line.
func FormatAuditLine(ev BookingEvent) string {
    labels := make([]string, len(ev.Seats))
    for i, s := range ev.Seats {
        labels[i] = s.String()
    }
    action := "Booking created"
    if ev.Type == QueueBookingCancelled {
        action = "Booking cancelled"
    }
    return fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | show_id=%d | seats=[%s]\n",
        ev.OccurredAt.UTC().Format(time.RFC3339), action, ev.BookingID, ev.UserID, ev.ShowID, strings.Join(labels, ","))
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
