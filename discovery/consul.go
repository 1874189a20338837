package discovery

import (
	"fmt"
	"os"

	"github.com/hashicorp/consul/api"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/flarexio/social/conf"
)

const ServiceName = "social"

type Registrar struct {
	client *api.Client
	reg    *api.AgentServiceRegistration
	log    *zap.Logger
}

// NewConsulRegistrar prepares a registration of the HTTP service on port.
// The advertised host falls back to the machine hostname.
func NewConsulRegistrar(cfg conf.Consul, instance string, port int, log *zap.Logger) (*Registrar, error) {
	config := api.DefaultConfig()
	if cfg.Address != "" {
		config.Address = cfg.Address
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create consul client")
	}

	host := cfg.Host
	if host == "" {
		host, err = os.Hostname()
		if err != nil {
			return nil, err
		}
	}

	reg := &api.AgentServiceRegistration{
		ID:      fmt.Sprintf("%s-%s-%d", instance, host, port),
		Name:    ServiceName,
		Address: host,
		Port:    port,
		Tags:    []string{"http", instance},
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", host, port),
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	return &Registrar{
		client: client,
		reg:    reg,
		log: log.With(
			zap.String("infra", "discovery"),
			zap.String("provider", "consul"),
			zap.String("service_id", reg.ID),
		),
	}, nil
}

func (r *Registrar) ID() string {
	return r.reg.ID
}

func (r *Registrar) Register() error {
	if err := r.client.Agent().ServiceRegister(r.reg); err != nil {
		return errors.Wrap(err, "failed to register service")
	}

	r.log.Info("registered")
	return nil
}

func (r *Registrar) Deregister() error {
	if err := r.client.Agent().ServiceDeregister(r.reg.ID); err != nil {
		return errors.Wrap(err, "failed to deregister service")
	}

	r.log.Info("deregistered")
	return nil
}
