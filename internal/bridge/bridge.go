package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/audit"
	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/infrastructure/config"
	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/infrastructure/logging"
	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/smartthings"
)

// MessageHandler processes an inbound MQTT message.
type MessageHandler func(topic string, payload []byte) error

// MQTTClient is the broker surface the bridge needs.
type MQTTClient interface {
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler MessageHandler) error
}

// DeviceAPI is the SmartThings surface the bridge needs.
type DeviceAPI interface {
	ListDevices(ctx context.Context) ([]smartthings.Device, error)
	DeviceStatus(ctx context.Context, deviceID string) (map[string]any, error)
	SendCommands(ctx context.Context, deviceID string, envelope smartthings.CommandEnvelope) error
}

// AuditLogger records inbound commands. Optional.
type AuditLogger interface {
	RecordCommand(ctx context.Context, deviceID, topic string, envelope []byte, outcome string) error
}

// MetricsSink receives numeric attribute values. Optional.
type MetricsSink interface {
	WriteAttributeMetric(deviceID, component, capability, attribute string, value float64) error
}

// Options configures a Bridge.
type Options struct {
	Config config.BridgeConfig
	MQTT   MQTTClient
	API    DeviceAPI
	Logger *logging.Logger
	QoS    byte

	// Audit and Metrics are optional side channels; nil disables them.
	Audit   AuditLogger
	Metrics MetricsSink
}

// Bridge mirrors SmartThings device state onto MQTT and routes MQTT
// commands back to the cloud API.
type Bridge struct {
	cfg     config.BridgeConfig
	topics  Topics
	store   *Store
	mqtt    MQTTClient
	api     DeviceAPI
	audit   AuditLogger
	metrics MetricsSink
	logger  *logging.Logger
	qos     byte

	// now is injectable for deterministic encoding in tests.
	now func() time.Time

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	runCtx  context.Context
	wg      sync.WaitGroup
}

// New creates a bridge from options.
func New(opts Options) (*Bridge, error) {
	if opts.MQTT == nil {
		return nil, ErrNilMQTTClient
	}
	if opts.API == nil {
		return nil, ErrNilDeviceAPI
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Bridge{
		cfg:     opts.Config,
		topics:  NewTopics(opts.Config.TopicPrefix, opts.Config.Discovery.Prefix),
		store:   NewStore(),
		mqtt:    opts.MQTT,
		api:     opts.API,
		audit:   opts.Audit,
		metrics: opts.Metrics,
		logger:  logger.With("component", "bridge"),
		qos:     opts.QoS,
		now:     time.Now,
	}, nil
}

// Topics exposes the bridge's topic namespace, for wiring the bridge
// status last-will at connection time.
func (b *Bridge) Topics() Topics {
	return b.topics
}

// Start subscribes to the inbound command topics and launches the poll
// loop. It returns once subscriptions are established.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return ErrAlreadyStarted
	}

	for _, filter := range b.topics.SubscriptionFilters() {
		if err := b.mqtt.Subscribe(filter, b.qos, b.handleMessage); err != nil {
			return fmt.Errorf("subscribing to %s: %w", filter, err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.runCtx = runCtx
	b.cancel = cancel
	b.started = true

	b.wg.Add(1)
	go b.pollLoop(runCtx)

	b.logger.Info("bridge started",
		"poll_interval", b.pollInterval().String(),
		"discovery_enabled", b.cfg.Discovery.Enabled)
	return nil
}

// Stop halts the poll loop and waits for in-flight work to finish.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return
	}
	b.started = false
	cancel := b.cancel
	b.mu.Unlock()

	cancel()
	b.wg.Wait()
	b.logger.Info("bridge stopped")
}

// RefreshDevices fetches the device listing and upserts the device cache.
// It returns the ids seen, in listing order.
func (b *Bridge) RefreshDevices(ctx context.Context) ([]string, error) {
	devices, err := b.api.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("refreshing devices: %w", err)
	}

	ids := make([]string, 0, len(devices))
	for _, device := range devices {
		if device.DeviceID == "" {
			continue
		}
		b.store.UpsertDevice(device)
		ids = append(ids, device.DeviceID)
	}
	return ids, nil
}

// pollLoop runs one refresh cycle immediately, then every poll interval
// until the context is cancelled.
func (b *Bridge) pollLoop(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.pollInterval())
	defer ticker.Stop()

	for {
		b.pollOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// pollOnce refreshes the device listing and publishes state for every
// device. A single device's failure never halts the cycle.
func (b *Bridge) pollOnce(ctx context.Context) {
	ids, err := b.RefreshDevices(ctx)
	if err != nil {
		b.logger.Error("device poll failed", "error", err)
		return
	}

	for _, deviceID := range ids {
		if ctx.Err() != nil {
			return
		}
		b.PublishDeviceState(ctx, deviceID, false)
	}
}

func (b *Bridge) pollInterval() time.Duration {
	return time.Duration(b.cfg.PollIntervalSeconds) * time.Second
}

// handleMessage classifies an inbound topic, translates the payload and
// submits the resulting envelope. A successful submission triggers a
// forced refresh so downstream state catches up quickly.
func (b *Bridge) handleMessage(topic string, payload []byte) error {
	var (
		deviceID string
		envelope smartthings.CommandEnvelope
		ok       bool
	)

	if id, component, capability, matched := b.topics.ParseCapabilitySet(topic); matched {
		deviceID = id
		envelope, ok = ParseCapabilityCommand(payload, component, capability)
	} else {
		id, matched := b.topics.DeviceID(topic)
		if !matched {
			return nil
		}
		deviceID = id
		envelope, ok = ParseDeviceCommand(payload)
	}

	ctx := b.runContext()

	if !ok {
		b.logger.Warn("ignoring empty or invalid command", "topic", topic)
		b.recordCommand(ctx, deviceID, topic, nil, audit.OutcomeRejected)
		return nil
	}

	encoded, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encoding command envelope: %w", err)
	}

	if err := b.api.SendCommands(ctx, deviceID, envelope); err != nil {
		b.logger.Error("command submission failed", "device_id", deviceID, "error", err)
		b.recordCommand(ctx, deviceID, topic, encoded, audit.OutcomeFailed)
		return nil
	}

	b.logger.Info("command sent", "device_id", deviceID, "topic", topic)
	b.recordCommand(ctx, deviceID, topic, encoded, audit.OutcomeAccepted)
	b.PublishDeviceState(ctx, deviceID, true)
	return nil
}

// runContext returns the bridge's run context, or a background context
// before Start.
func (b *Bridge) runContext() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.runCtx != nil {
		return b.runCtx
	}
	return context.Background()
}

// recordCommand writes to the audit log when one is configured.
func (b *Bridge) recordCommand(ctx context.Context, deviceID, topic string, envelope []byte, outcome string) {
	if b.audit == nil {
		return
	}
	if err := b.audit.RecordCommand(ctx, deviceID, topic, envelope, outcome); err != nil &&
		!errors.Is(err, context.Canceled) {
		b.logger.Warn("recording command failed", "device_id", deviceID, "error", err)
	}
}
