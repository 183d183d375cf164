// Package logwriter is the reference logging capability provider: WriteLog
// payloads become logrus entries tagged with the originating actor, so hosts
// can aggregate guest logs alongside their own.
package logwriter

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"caplink/capabilities"
	"caplink/codec"
	"caplink/core"
	"caplink/logging"
)

// CapabilityID identifies the capability this provider implements.
const CapabilityID = "caplink:logging"

type Provider struct {
	logger *logrus.Logger

	mu         sync.Mutex
	configured bool

	bindings *capabilities.Bindings
}

var _ capabilities.CapabilityProvider = (*Provider)(nil)

// New creates a provider writing through logger, or the standard logrus logger
// when nil.
func New(logger *logrus.Logger) *Provider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Provider{
		logger:   logger,
		bindings: capabilities.NewBindings(),
	}
}

// ConfigureDispatch satisfies the provider contract. The logging capability
// never dispatches into actors, but the once-only ordering still holds.
func (p *Provider) ConfigureDispatch(capabilities.Dispatcher) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.configured {
		return fmt.Errorf("logwriter: dispatcher already configured")
	}
	p.configured = true
	return nil
}

func (p *Provider) HandleCall(actor string, op string, payload []byte) ([]byte, error) {
	switch op {
	case capabilities.OpGetCapabilityDescriptor:
		return codec.Serialize(descriptor())
	case core.OpBindActor:
		var cfg core.CapabilityConfiguration
		if err := codec.Deserialize(payload, &cfg); err != nil {
			return nil, err
		}
		return nil, p.bindings.Bind(cfg)
	case core.OpRemoveActor:
		var cfg core.CapabilityConfiguration
		if err := codec.Deserialize(payload, &cfg); err != nil {
			return nil, err
		}
		p.bindings.Remove(cfg.Module)
		return nil, nil
	case logging.OpWriteLog:
		var req logging.WriteLogRequest
		if err := codec.Deserialize(payload, &req); err != nil {
			return nil, err
		}
		p.write(actor, req)
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q for %s", capabilities.ErrUnknownOperation, op, CapabilityID)
	}
}

func (p *Provider) write(actor string, req logging.WriteLogRequest) {
	if req.Level == logging.LevelOff {
		return
	}
	p.logger.WithField("actor", actor).Log(level(req.Level), req.Body)
}

func level(l uint32) logrus.Level {
	switch l {
	case logging.LevelError:
		return logrus.ErrorLevel
	case logging.LevelWarn:
		return logrus.WarnLevel
	case logging.LevelInfo:
		return logrus.InfoLevel
	case logging.LevelDebug:
		return logrus.DebugLevel
	case logging.LevelTrace:
		return logrus.TraceLevel
	default:
		// Unknown levels never drop a message an actor asked to keep.
		return logrus.InfoLevel
	}
}

func descriptor() capabilities.CapabilityDescriptor {
	return capabilities.NewDescriptorBuilder().
		ID(CapabilityID).
		Name("Actor Log Writer").
		Version(core.Version).
		Revision(1).
		LongDescription("Writes per-actor log entries into the host's structured log").
		WithOperation(logging.OpWriteLog, capabilities.ToProvider, "Write a log entry on behalf of an actor").
		Build()
}
