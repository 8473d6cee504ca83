package ethereum

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/grafana/sobek"
	"go.k6.io/k6/js/common"
	"go.k6.io/k6/js/modules"
	"go.k6.io/k6/metrics"
)

var errUnableToParseOptions = errors.New("unable to parse options object")

type ethMetrics struct {
	RequestDuration     *metrics.Metric
	TimeToMine          *metrics.Metric
	Errors              *metrics.Metric
	ImplicitInvocations *metrics.Metric
}

func init() { //nolint:gochecknoinits // Required for k6 module registration.
	modules.Register("k6/x/ethereum", &EthRoot{})
}

// EthRoot is the root module.
type EthRoot struct{}

// NewModuleInstance implements the modules.Module interface returning a new instance for each VU.
func (*EthRoot) NewModuleInstance(vu modules.VU) modules.Instance {
	return &ModuleInstance{
		vu:         vu,
		ethMetrics: registerMetrics(vu),
	}
}

// ModuleInstance represents a k6 module instance for the Ethereum extension.
type ModuleInstance struct {
	vu         modules.VU
	ethMetrics ethMetrics
}

// Exports implements the modules.Instance interface and returns the exported types for the JS module.
func (mi *ModuleInstance) Exports() modules.Exports {
	return modules.Exports{Named: map[string]any{
		"Client": mi.NewClient,
	}}
}

// NewClient creates a new Ethereum client instance.
func (mi *ModuleInstance) NewClient(call sobek.ConstructorCall) *sobek.Object {
	runtime := mi.vu.Runtime()

	var optionsArg map[string]any

	if len(call.Arguments) == 0 {
		common.Throw(runtime, errUnableToParseOptions)
	}

	if err := runtime.ExportTo(call.Arguments[0], &optionsArg); err != nil {
		common.Throw(runtime, errUnableToParseOptions)
	}

	opts, err := newOptionsFrom(optionsArg)
	if err != nil {
		common.Throw(runtime, fmt.Errorf("invalid options; reason: %w", err))
	}

	client, err := Dial(mi.vu.Context(), opts)
	if err != nil {
		common.Throw(runtime, fmt.Errorf("invalid options; reason: %w", err))
	}

	client.vu = mi.vu
	client.metrics = mi.ethMetrics

	return runtime.ToValue(client).ToObject(runtime)
}

func registerMetrics(vu modules.VU) ethMetrics {
	registry := vu.InitEnv().Registry

	return ethMetrics{
		RequestDuration:     registry.MustNewMetric("ethereum_req_duration", metrics.Trend, metrics.Time),
		TimeToMine:          registry.MustNewMetric("ethereum_time_to_mine", metrics.Trend, metrics.Time),
		Errors:              registry.MustNewMetric("ethereum_errors", metrics.Counter, metrics.Default),
		ImplicitInvocations: registry.MustNewMetric("ethereum_implicit_invocations", metrics.Counter, metrics.Default),
	}
}

// Options configures a Client.
type Options struct {
	URL                 string        `js:"url"                 json:"url"`
	PrivateKey          string        `js:"privateKey"          json:"privateKey"`
	ReceiptTimeout      time.Duration `js:"receiptTimeout"      json:"receiptTimeout"`
	ReceiptPollInterval time.Duration `js:"receiptPollInterval" json:"receiptPollInterval"`
}

func (o *Options) receiptTimeout() time.Duration {
	if o == nil || o.ReceiptTimeout <= 0 {
		return defaultReceiptTimeout
	}

	return o.ReceiptTimeout
}

func (o *Options) receiptPollInterval() time.Duration {
	if o == nil || o.ReceiptPollInterval <= 0 {
		return defaultReceiptPollInterval
	}

	return o.ReceiptPollInterval
}

// newOptionsFrom validates and instantiates Options from its map representation
// as obtained by calling sobek's Runtime.ExportTo. Unknown keys are rejected.
func newOptionsFrom(argument map[string]any) (*Options, error) {
	var opts Options

	if err := decodeStrict(argument, &opts); err != nil {
		return nil, fmt.Errorf("unable to decode options: %w", err)
	}

	// Scripts pass durations as milliseconds; larger values are already nanoseconds.
	opts.ReceiptTimeout = millisecondsIfSmall(opts.ReceiptTimeout)
	opts.ReceiptPollInterval = millisecondsIfSmall(opts.ReceiptPollInterval)

	if opts.URL == "" {
		return nil, errURLRequired
	}

	return &opts, nil
}

func millisecondsIfSmall(d time.Duration) time.Duration {
	if d > 0 && d < time.Second {
		return d * time.Millisecond
	}

	return d
}

// decodeStrict round-trips value through JSON into target, failing on unknown fields.
func decodeStrict(value any, target any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("unable to serialize to JSON: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
