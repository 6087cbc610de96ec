package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Publisher hands booking events to the broker.  Publishing is best
// effort: callers log failures and carry on.
type Publisher interface {
    Publish(ctx context.Context, ev BookingEvent) error
}

// NopPublisher discards events.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BookingEvent) error { return nil }

const (
    dialTimeout  = 2 * time.Second
    dialCooldown = 5 * time.Second
)

// AMQPPublisher publishes persistent JSON messages to durable queues.  The
// connection is opened lazily and re-opened after the broker drops it.
// After a failed dial, Publish fails fast until the cooldown has passed.
type AMQPPublisher struct {
    url          string
    log          *zap.Logger
    dialTimeout  time.Duration
    dialCooldown time.Duration

    mu        sync.Mutex
    conn      *amqp.Connection
    ch        *amqp.Channel
    nextDial  time.Time
    lastError error
}

// NewAMQPPublisher returns a publisher for url.  No connection is made
// until the first Publish.
func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &AMQPPublisher{url: url, log: log, dialTimeout: dialTimeout, dialCooldown: dialCooldown}
}

// Publish marshals ev and sends it to the queue named by ev.Type.
func (p *AMQPPublisher) Publish(ctx context.Context, ev BookingEvent) error {
    if ev.Type == "" {
        return errors.New("queue: event type is empty")
    }
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channel(ctx)
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    uuid.NewString(),
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", ev.Type, false, false, pub); err != nil {
        p.reset()
        return fmt.Errorf("publish %s: %w", ev.Type, err)
    }
    p.log.Debug("event published", zap.String("queue", ev.Type), zap.Uint64("booking_id", ev.BookingID))
    return nil
}

// channel returns an open channel, dialing and declaring queues when
// needed.  The dial is bounded by p.dialTimeout and by ctx's deadline.
// Callers hold p.mu.
func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
        return p.ch, nil
    }
    p.reset()
    now := time.Now()
    if now.Before(p.nextDial) {
        return nil, fmt.Errorf("dial broker: %w", p.lastError)
    }
    timeout := p.dialTimeout
    if dl, ok := ctx.Deadline(); ok && dl.Sub(now) < timeout {
        timeout = dl.Sub(now)
    }
    if timeout <= 0 {
        return nil, fmt.Errorf("dial broker: %w", context.DeadlineExceeded)
    }
    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(timeout),
    })
    if err != nil {
        p.nextDial, p.lastError = now.Add(p.dialCooldown), err
        return nil, fmt.Errorf("dial broker: %w", err)
    }
    p.nextDial, p.lastError = time.Time{}, nil
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("channel open: %w", err)
    }
    if err := declareQueues(ch); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, err
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *AMQPPublisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.reset()
    return nil
}

// declareQueues ensures the booking queues exist (idempotent).  Durable so
// messages survive broker restarts.
func declareQueues(ch *amqp.Channel) error {
    for _, name := range []string{QueueBookingCreated, QueueBookingCancelled} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
    }
    return nil
}
