package metrics

type Exporter string

const (
	PrometheusExporter Exporter = "prometheus"
	OTLPExporter       Exporter = "otlp"
)

type ExporterCfg struct {
	Exporter Exporter
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

func NewPrometheusConfig() ExporterCfg {
	return ExporterCfg{Exporter: PrometheusExporter}
}

func NewOTLPConfig(endpoint string, headers map[string]string, insecure bool) ExporterCfg {
	return ExporterCfg{
		Exporter: OTLPExporter,
		Endpoint: endpoint,
		Headers:  headers,
		Insecure: insecure,
	}
}

type Config struct {
	ServiceName string
	Exporters   []ExporterCfg
}

type OptionFn func(config Config) Config

func WithExporterConfig(exporter ExporterCfg) OptionFn {
	return func(config Config) Config {
		config.Exporters = append(config.Exporters, exporter)

		return config
	}
}

func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName

		return config
	}
}

type PromServerConfig struct {
	port string
}

type PromOptionFn func(config PromServerConfig) PromServerConfig

func WithPort(port string) PromOptionFn {
	return func(config PromServerConfig) PromServerConfig {
		config.port = port
		return config
	}
}
