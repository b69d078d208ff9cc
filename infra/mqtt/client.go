package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/pilgrimcast/core/model"
	coremon "github.com/kilianp07/pilgrimcast/core/monitoring"
	coremqtt "github.com/kilianp07/pilgrimcast/core/mqtt"
	"github.com/kilianp07/pilgrimcast/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker        string          `json:"broker"`
	ClientID      string          `json:"client_id"`
	Username      string          `json:"username"`
	Password      string          `json:"password"`
	Topic         string          `json:"topic"`
	RequestTopic  string          `json:"request_topic"`
	ResponseTopic string          `json:"response_topic"`
	Retain        bool            `json:"retain"`
	UseTLS        bool            `json:"use_tls"`
	ClientCert    string          `json:"client_cert"`
	ClientKey     string          `json:"client_key"`
	CABundle      string          `json:"ca_bundle"`
	AuthMethod    string          `json:"auth_method"`
	QoS           map[string]byte `json:"qos"`
	LWTTopic      string          `json:"lwt_topic"`
	LWTPayload    string          `json:"lwt_payload"`
	LWTQoS        byte            `json:"lwt_qos"`
	LWTRetain     bool            `json:"lwt_retain"`
	MaxRetries    int             `json:"max_retries"`
	BackoffMS     int             `json:"backoff_ms"`
	TimeoutMS     int             `json:"timeout_ms"`
	TLSConfig     *tls.Config     `json:"-"`
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// SetDefaults fills unset topics and retry settings.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "pilgrimcast"
	}
	if c.Topic == "" {
		c.Topic = "pilgrimcast/predictions"
	}
	if c.RequestTopic != "" && c.ResponseTopic == "" {
		c.ResponseTopic = c.RequestTopic + "/response"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 5000
	}
}

// RequestHandler answers a prediction request received on the request topic.
type RequestHandler func(ctx context.Context, payload map[string]any) model.Response

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient implements coremqtt.Publisher using Eclipse Paho.
type PahoClient struct {
	cli    pahoClient
	cfg    Config
	logger logger.Logger

	mu      sync.RWMutex
	handler RequestHandler
	ctx     context.Context
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker, retrying with exponential backoff.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{cfg: cfg, logger: log, ctx: context.Background()}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		pc.resubscribe(c)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	connect := func() error {
		token := c.Connect()
		if !token.WaitTimeout(pc.timeout()) {
			return fmt.Errorf("connect to %s: timeout", cfg.Broker)
		}
		return token.Error()
	}
	if err := backoff.RetryNotify(connect, pc.retryPolicy(context.Background()), func(err error, d time.Duration) {
		log.Warnf("mqtt connect failed, retrying in %s: %v", d, err)
	}); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

func (p *PahoClient) timeout() time.Duration {
	return time.Duration(p.cfg.TimeoutMS) * time.Millisecond
}

func (p *PahoClient) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(p.cfg.BackoffMS) * time.Millisecond
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.cfg.MaxRetries)), ctx)
}

func (p *PahoClient) qos(kind string) byte {
	if q, ok := p.cfg.QoS[kind]; ok {
		return q
	}
	return 0
}

// Publish sends payload to topic. Failed attempts are retried with
// exponential backoff; the final error is reported to monitoring.
func (p *PahoClient) Publish(topic string, payload []byte) error {
	if p.cli == nil || !p.cli.IsConnected() {
		return coremqtt.ErrNotConnected
	}
	attempt := 0
	op := func() error {
		attempt++
		token := p.cli.Publish(topic, p.qos("prediction"), p.cfg.Retain, payload)
		if !token.WaitTimeout(p.timeout()) {
			return coremqtt.ErrPublishTimeout
		}
		return token.Error()
	}
	err := backoff.RetryNotify(op, p.retryPolicy(context.Background()), func(err error, d time.Duration) {
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt, topic, err)
	})
	if err != nil {
		coremon.CaptureException(err, coremon.Tags("mqtt", "topic", topic))
		return err
	}
	p.logger.Debugf("published %d bytes to %s", len(payload), topic)
	return nil
}

// Serve subscribes to the request topic and answers each request with h on
// the response topic. The subscription is renewed after reconnects until ctx
// is canceled.
func (p *PahoClient) Serve(ctx context.Context, h RequestHandler) error {
	if p.cfg.RequestTopic == "" {
		return fmt.Errorf("mqtt request_topic not configured")
	}
	p.mu.Lock()
	p.handler = h
	p.ctx = ctx
	p.mu.Unlock()
	token := p.cli.Subscribe(p.cfg.RequestTopic, p.qos("request"), p.onRequest)
	if !token.WaitTimeout(p.timeout()) {
		return fmt.Errorf("subscribe %s: timeout", p.cfg.RequestTopic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", p.cfg.RequestTopic, err)
	}
	go func() {
		<-ctx.Done()
		p.mu.Lock()
		p.handler = nil
		p.mu.Unlock()
	}()
	return nil
}

func (p *PahoClient) resubscribe(c paho.Client) {
	p.mu.RLock()
	h := p.handler
	p.mu.RUnlock()
	if h == nil || p.cfg.RequestTopic == "" {
		return
	}
	if token := c.Subscribe(p.cfg.RequestTopic, p.qos("request"), p.onRequest); token.Wait() && token.Error() != nil {
		p.logger.Errorf("subscribe error: %v", token.Error())
	}
}

func (p *PahoClient) onRequest(_ paho.Client, msg paho.Message) {
	p.mu.RLock()
	h, ctx := p.handler, p.ctx
	p.mu.RUnlock()
	if h == nil {
		return
	}
	var req coremqtt.RequestMessage
	var resp model.Response
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		p.logger.Errorf("failed to decode request: %v", err)
		resp = model.Failure(fmt.Errorf("%w: %v", model.ErrInvalidInput, err))
	} else {
		resp = h(ctx, req.Payload)
	}
	body, err := json.Marshal(coremqtt.ResponseMessage{RequestID: req.RequestID, Response: resp})
	if err != nil {
		p.logger.Errorf("encode response: %v", err)
		return
	}
	if err := p.Publish(p.cfg.ResponseTopic, body); err != nil {
		p.logger.Errorf("publish response %s: %v", req.RequestID, err)
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
