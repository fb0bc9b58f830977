// Package config resolves this server's configuration from command-line
// flags, environment variables, and an optional config file, in that order
// of precedence, using viper and pflag the way the rest of this codebase's
// lineage does.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully resolved, validated configuration for one server
// process.
type Config struct {
	IPAddress            string
	PortMaster           uint16
	PortHolepunch        uint16
	LogPackets           bool
	OpsAPIAddr           string
	OpsAPIKey            string
	ModerationDBPath     string
	MQTTBrokerURL        string
	UserServiceHost      string
	UserServicePort      int
	InventoryServiceHost string
	InventoryServicePort int
}

// UserServiceBaseURL and InventoryServiceBaseURL build the gateway's base
// URLs from the resolved host/port pairs.
func (c Config) UserServiceBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.UserServiceHost, c.UserServicePort)
}

func (c Config) InventoryServiceBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.InventoryServiceHost, c.InventoryServicePort)
}

// Load resolves configuration from CLI flags (highest precedence), then
// environment variables, then the optional config file, then the defaults
// below. args is normally
// os.Args[1:]; it is a parameter instead of being read from os.Args
// directly so this function stays testable.
func Load(args []string) (Config, error) {
	flags := pflag.NewFlagSet("masterserver", pflag.ContinueOnError)
	flags.StringP("ip-address", "i", "", "address to bind the TCP session listener on; auto-detected when omitted")
	flags.Uint16P("port-master", "p", 30001, "TCP port clients connect to")
	flags.Uint16P("port-holepunch", "P", 30002, "UDP port for NAT holepunch probes")
	flags.BoolP("log-packets", "l", false, "log every inbound and outbound frame as a hex dump at trace level")
	flags.String("config-file", "config.json", "path to an optional JSON config file")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("MASTERSERVER")
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	v.SetDefault("ops_api_addr", "127.0.0.1:8090")
	v.SetDefault("ops_api_key", "")
	v.SetDefault("moderation_db_path", "data/moderation.db")
	v.SetDefault("mqtt_broker_url", "")

	v.SetConfigFile(v.GetString("config-file"))
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		IPAddress:        v.GetString("ip-address"),
		PortMaster:       uint16(v.GetUint32("port-master")),
		PortHolepunch:    uint16(v.GetUint32("port-holepunch")),
		LogPackets:       v.GetBool("log-packets"),
		OpsAPIAddr:       v.GetString("ops_api_addr"),
		OpsAPIKey:        v.GetString("ops_api_key"),
		ModerationDBPath: v.GetString("moderation_db_path"),
		MQTTBrokerURL:    v.GetString("mqtt_broker_url"),
	}

	userHost, userPort, err := requireHostPort("USERSERVICE_HOST", "USERSERVICE_PORT")
	if err != nil {
		return Config{}, err
	}
	cfg.UserServiceHost, cfg.UserServicePort = userHost, userPort

	invHost, invPort, err := requireHostPort("INVSERVICE_HOST", "INVSERVICE_PORT")
	if err != nil {
		return Config{}, err
	}
	cfg.InventoryServiceHost, cfg.InventoryServicePort = invHost, invPort

	return cfg, nil
}

// requireHostPort reads a HOST/PORT env var pair and fails fast if either
// is missing or the port doesn't parse: a gateway with no known backend is
// a misconfiguration, not a degraded-mode condition to limp along with.
func requireHostPort(hostVar, portVar string) (string, int, error) {
	host := os.Getenv(hostVar)
	if host == "" {
		return "", 0, fmt.Errorf("config: required environment variable %s is not set", hostVar)
	}
	portStr := os.Getenv(portVar)
	if portStr == "" {
		return "", 0, fmt.Errorf("config: required environment variable %s is not set", portVar)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("config: %s is not a valid port number: %w", portVar, err)
	}
	return host, port, nil
}
