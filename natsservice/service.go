package natsservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/geoknoesis/shacl-go/rdf"
	"github.com/geoknoesis/shacl-go/validator"
)

// Default subjects and queue group.
const (
	DefaultSubject = "shacl.validate"
	DefaultQueue   = "shacl-validators"
	DefaultTimeout = 30 * time.Second
)

// Reply headers.
const (
	HeaderConforms    = "Shacl-Conforms"
	HeaderResults     = "Shacl-Results"
	HeaderError       = "Shacl-Error"
	HeaderConfigured  = "Shacl-Configured"
	HeaderContentType = "Content-Type"
)

// ErrStarted is returned by Start on a service that is already subscribed.
var ErrStarted = errors.New("natsservice: already started")

// Config controls the subjects the service listens on.
type Config struct {
	// Subject receives data payloads. Replies carry the serialized report.
	Subject string
	// Queue is the queue group shared by every replica.
	Queue string
	// Timeout bounds the handling of one request.
	Timeout time.Duration
}

// ConfigureSubject returns the subject that accepts JSON configurations.
func (c Config) ConfigureSubject() string { return c.Subject + ".configure" }

func (c Config) withDefaults() Config {
	if c.Subject == "" {
		c.Subject = DefaultSubject
	}
	if c.Queue == "" {
		c.Queue = DefaultQueue
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// RemoteGraphIO returns the graph codec a service should be built with.
// Requesters choose the locators, so only http and https are dereferenced.
func RemoteGraphIO(opts ...rdf.LoaderOption) validator.GraphIO {
	opts = append(opts[:len(opts):len(opts)], rdf.WithSchemes("http", "https"))
	return rdf.NewCodec(rdf.NewHTTPLoader(opts...))
}

// Service answers validation requests over NATS request/reply.
type Service struct {
	action *validator.Action
	cfg    Config
	logger *zap.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

// New returns a service running validations through action.
func New(action *validator.Action, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{action: action, cfg: cfg.withDefaults(), logger: logger}
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

// Start subscribes the validate and configure subjects on nc. Handlers
// derive their contexts from ctx.
func (s *Service) Start(ctx context.Context, nc *nats.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) > 0 {
		return ErrStarted
	}

	handlers := map[string]func(context.Context, []byte) *nats.Msg{
		s.cfg.Subject:            s.validate,
		s.cfg.ConfigureSubject(): s.configure,
	}
	for subject, handle := range handlers {
		sub, err := nc.QueueSubscribe(subject, s.cfg.Queue, s.responder(ctx, handle))
		if err != nil {
			s.unsubscribe()
			return fmt.Errorf("natsservice: subscribe %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
		s.logger.Info("subscribed", zap.String("subject", subject), zap.String("queue", s.cfg.Queue))
	}
	return nil
}

// Stop drains the subscriptions so in-flight requests are answered.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			errs = append(errs, err)
		}
	}
	s.subs = nil
	return errors.Join(errs...)
}

func (s *Service) unsubscribe() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = nil
}

func (s *Service) responder(ctx context.Context, handle func(context.Context, []byte) *nats.Msg) nats.MsgHandler {
	return func(msg *nats.Msg) {
		msgCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()

		reply := handle(msgCtx, msg.Data)
		if msg.Reply == "" {
			s.logger.Debug("request without reply subject", zap.String("subject", msg.Subject))
			return
		}
		if err := msg.RespondMsg(reply); err != nil {
			s.logger.Error("failed to send reply", zap.String("subject", msg.Subject), zap.Error(err))
		}
	}
}

// validate runs one payload and builds the reply: the serialized report on
// success, an empty body with HeaderError otherwise.
func (s *Service) validate(ctx context.Context, data []byte) *nats.Msg {
	reply := &nats.Msg{Header: nats.Header{}}
	v := s.action.Validator()
	if v == nil {
		return failure(reply, &validator.NotConfiguredError{Op: "Run"})
	}
	report, err := v.RunReport(ctx, string(data))
	if err != nil {
		s.logger.Info("validation request failed", zap.Error(err))
		return failure(reply, err)
	}
	text, err := v.Serialize(report)
	if err != nil {
		return failure(reply, err)
	}
	reply.Header.Set(HeaderConforms, strconv.FormatBool(report.Conforms))
	reply.Header.Set(HeaderResults, strconv.Itoa(len(report.Results)))
	reply.Header.Set(HeaderContentType, v.OutputFormat().MediaType())
	reply.Data = []byte(text)
	return reply
}

// configure installs the JSON configuration object in data.
func (s *Service) configure(ctx context.Context, data []byte) *nats.Msg {
	reply := &nats.Msg{Header: nats.Header{}}
	var cfg validator.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return failure(reply, &validator.ConfigurationError{Reason: "payload is not a JSON object", Err: err})
	}
	if err := s.action.Configure(ctx, cfg); err != nil {
		s.logger.Warn("reconfiguration rejected", zap.Error(err))
		return failure(reply, err)
	}
	s.logger.Info("reconfigured", zap.Int("shapes", s.action.Validator().Shapes().Len()))
	reply.Header.Set(HeaderConfigured, "true")
	return reply
}

func failure(reply *nats.Msg, err error) *nats.Msg {
	reply.Header.Set(HeaderError, publicError(err))
	return reply
}

// publicError renders err for a reply header. Input excerpts and parser
// messages may quote fetched documents, so only positions are reported for
// parse failures and only the status for fetch failures.
func publicError(err error) string {
	var (
		parseErr    *validator.ParseError
		rdfParseErr *rdf.ParseError
		fetchErr    *rdf.FetchError
	)
	switch {
	case errors.As(err, &fetchErr):
		msg := "fetch " + fetchErr.Locator
		switch {
		case errors.Is(err, rdf.ErrSchemeNotAllowed):
			msg += ": " + rdf.ErrSchemeNotAllowed.Error()
		case fetchErr.StatusCode != 0:
			msg += ": status " + strconv.Itoa(fetchErr.StatusCode)
		case errors.Is(err, rdf.ErrInputTooLarge):
			msg += ": " + rdf.ErrInputTooLarge.Error()
		default:
			msg += ": failed"
		}
		return msg
	case errors.As(err, &parseErr):
		msg := fmt.Sprintf("validator: %s is not valid %s", parseErr.Stage, parseErr.Format)
		if errors.As(err, &rdfParseErr) && rdfParseErr.Line > 0 {
			msg += fmt.Sprintf(" (line %d, column %d)", rdfParseErr.Line, rdfParseErr.Column)
		}
		if errors.Is(err, rdf.ErrDepthExceeded) {
			msg += ": " + rdf.ErrDepthExceeded.Error()
		}
		return msg
	case errors.As(err, &rdfParseErr):
		return fmt.Sprintf("rdf: input is not valid %s", rdfParseErr.Format)
	}
	return strings.ReplaceAll(err.Error(), "\n", " ")
}
