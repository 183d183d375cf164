// Package msgbus is an in-process messaging capability provider. Actors
// subscribe to a subject through their binding configuration; published
// messages fan out to subscribers as DeliverMessage dispatches, and
// request-reply correlation is handled entirely by the provider through
// generated inbox subjects.
package msgbus

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	log "github.com/sirupsen/logrus"

	"caplink/capabilities"
	"caplink/codec"
	"caplink/core"
	"caplink/messaging"
)

// CapabilityID identifies the capability this provider implements.
const CapabilityID = "caplink:messaging"

// SubscriptionKey is the binding configuration key naming the subject an
// actor wants delivered to it.
const SubscriptionKey = "subscription"

// inboxPrefix marks subjects reserved for request-reply correlation.
const inboxPrefix = "_INBOX."

type Provider struct {
	mu         sync.Mutex
	dispatcher capabilities.Dispatcher
	configured bool
	inboxes    map[string]chan []byte

	bindings *capabilities.Bindings
}

var _ capabilities.CapabilityProvider = (*Provider)(nil)

func New() *Provider {
	return &Provider{
		dispatcher: capabilities.NullDispatcher{},
		inboxes:    make(map[string]chan []byte),
		bindings:   capabilities.NewBindings(),
	}
}

func (p *Provider) ConfigureDispatch(d capabilities.Dispatcher) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.configured {
		return fmt.Errorf("msgbus: dispatcher already configured")
	}
	p.dispatcher = d
	p.configured = true
	return nil
}

func (p *Provider) currentDispatcher() capabilities.Dispatcher {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dispatcher
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
	case messaging.OpPublish:
		return nil, p.publish(payload)
	case messaging.OpRequest:
		return p.request(payload)
	default:
		return nil, fmt.Errorf("%w: %q for %s", capabilities.ErrUnknownOperation, op, CapabilityID)
	}
}

// publish routes a message: replies addressed to a pending inbox complete the
// waiting request, anything else fans out to subscribed actors.
func (p *Provider) publish(payload []byte) error {
	var msg messaging.BrokerMessage
	if err := codec.Deserialize(payload, &msg); err != nil {
		return err
	}

	p.mu.Lock()
	reply, pending := p.inboxes[msg.Subject]
	p.mu.Unlock()
	if pending {
		select {
		case reply <- payload:
		default:
			// The requester already gave up or a second reply raced in.
			log.Debugf("msgbus: discarding surplus reply on %s", msg.Subject)
		}
		return nil
	}

	return p.deliver(msg.Subject, payload)
}

// deliver pushes the serialized message to every actor subscribed to subject.
func (p *Provider) deliver(subject string, payload []byte) error {
	d := p.currentDispatcher()
	var firstErr error
	for _, module := range p.bindings.Modules() {
		cfg, ok := p.bindings.Get(module)
		if !ok || cfg.Values[SubscriptionKey] != subject {
			continue
		}
		if _, err := d.Dispatch(module, messaging.OpDeliverMessage, payload); err != nil {
			log.Errorf("msgbus: delivery of %s to %s failed: %v", subject, module, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// request publishes with a provider-managed reply inbox and waits for the
// first reply or the requester's timeout budget, whichever comes first. The
// reply is returned as a serialized BrokerMessage.
func (p *Provider) request(payload []byte) ([]byte, error) {
	var req messaging.RequestMessage
	if err := codec.Deserialize(payload, &req); err != nil {
		return nil, err
	}

	inbox := inboxPrefix + uuid.NewString()
	reply := make(chan []byte, 1)
	p.mu.Lock()
	p.inboxes[inbox] = reply
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.inboxes, inbox)
		p.mu.Unlock()
	}()

	out, err := codec.Serialize(&messaging.BrokerMessage{
		Subject: req.Subject,
		ReplyTo: inbox,
		Body:    req.Body,
	})
	if err != nil {
		return nil, err
	}
	// Deliveries run detached so a slow subscriber cannot eat into the
	// requester's timeout budget.
	go func() {
		if err := p.deliver(req.Subject, out); err != nil {
			log.Debugf("msgbus: request fan-out on %s: %v", req.Subject, err)
		}
	}()

	timeout := time.Duration(req.TimeoutMs) * time.Millisecond
	select {
	case body := <-reply:
		return body, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w: no reply on %s within %dms", messaging.ErrRequestTimeout, req.Subject, req.TimeoutMs)
	}
}

func descriptor() capabilities.CapabilityDescriptor {
	return capabilities.NewDescriptorBuilder().
		ID(CapabilityID).
		Name("In-Process Message Bus").
		Version(core.Version).
		Revision(1).
		LongDescription("An in-process message broker for subject-based publish and request-reply between actors").
		WithOperation(messaging.OpPublish, capabilities.ToProvider, "Publish a message on a subject").
		WithOperation(messaging.OpRequest, capabilities.ToProvider, "Publish a request and await the first reply").
		WithOperation(messaging.OpDeliverMessage, capabilities.ToActor, "Deliver a message to a subscribed actor").
		Build()
}
