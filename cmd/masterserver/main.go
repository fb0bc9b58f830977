// Kongor master server: the lobby/matchmaking front door game clients talk
// to over TCP, backed by a user/inventory HTTP gateway and paired with a UDP
// NAT holepunch endpoint, an Ops API, MQTT telemetry, and an operator
// console.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kongor-lobby/masterserver/internal/api"
	"github.com/kongor-lobby/masterserver/internal/cli"
	"github.com/kongor-lobby/masterserver/internal/config"
	"github.com/kongor-lobby/masterserver/internal/connector"
	"github.com/kongor-lobby/masterserver/internal/db"
	"github.com/kongor-lobby/masterserver/internal/events"
	"github.com/kongor-lobby/masterserver/internal/handler"
	"github.com/kongor-lobby/masterserver/internal/lobby"
	"github.com/kongor-lobby/masterserver/internal/network"
	"github.com/kongor-lobby/masterserver/internal/session"
	"github.com/kongor-lobby/masterserver/internal/telemetry"
	"github.com/kongor-lobby/masterserver/internal/util"
)

const (
	AppName    = "kongor-masterserver"
	AppVersion = "1.0.0"
	Banner     = `
 _              __             _       _     _
| | _____  ___ / _| ___  _ __ (_) ___ | |__ | |__  _   _
| |/ / _ \/ __| |_ / _ \| '_ \| |/ _ \| '_ \| '_ \| | | |
|   < (_) \__ \  _| (_) | | | | | (_) | |_) | |_) | |_| |
|_|\_\___/|___/_|  \___/|_| |_|_|\___/|_.__/|_.__/ \__, |
                                                    |___/  v%s
 lobby / matchmaking master server
`
)

func main() {
	fmt.Printf(Banner, AppVersion)
	fmt.Println()

	if err := util.InitLogger(util.DefaultLogConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	sysInfo := util.GetSystemInfo()
	log.Info().
		Str("hostname", sysInfo.Hostname).
		Str("os", sysInfo.OS).
		Str("cpu", sysInfo.CPUModel).
		Int("cores", sysInfo.CPUCores).
		Uint64("memory_mb", sysInfo.TotalMemory).
		Msg("system information")

	if cfg.IPAddress == "" {
		detected, err := resolveBindAddress()
		if err != nil {
			log.Error().Err(err).Msg("failed to determine a bind address; set --ip-address explicitly")
			os.Exit(1)
		}
		cfg.IPAddress = detected
	}
	log.Info().Str("ip", cfg.IPAddress).Msg("binding on this address")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventBus := events.NewEventBus()
	eventBus.Subscribe(events.EventSessionBound, "log", logEvent)
	eventBus.Subscribe(events.EventSessionUnbound, "log", logEvent)
	eventBus.Subscribe(events.EventRoomCreated, "log", logEvent)
	eventBus.Subscribe(events.EventRoomRemoved, "log", logEvent)
	eventBus.Subscribe(events.EventUserKicked, "log", logEvent)

	sessions := session.NewRegistry()
	conns := network.NewRegistry()
	directory := lobby.NewDirectory()
	seedDirectory(directory)

	gateway := connector.New(connector.Config{
		UserServiceBaseURL:      cfg.UserServiceBaseURL(),
		InventoryServiceBaseURL: cfg.InventoryServiceBaseURL(),
	})
	defer gateway.Close()

	var moderation *db.ModerationStore
	if cfg.ModerationDBPath != "" {
		moderation, err = db.NewModerationStore(cfg.ModerationDBPath)
		if err != nil {
			log.Error().Err(err).Msg("failed to open moderation store")
			os.Exit(1)
		}
		defer moderation.Close()
	}

	router := handler.NewRouter(sessions, conns, directory, gateway, moderation, eventBus, log.Logger)

	masterAddr := net.JoinHostPort(cfg.IPAddress, strconv.Itoa(int(cfg.PortMaster)))
	holepunchAddr := net.JoinHostPort(cfg.IPAddress, strconv.Itoa(int(cfg.PortHolepunch)))

	tcpListener := network.NewTCPListener(masterAddr, cfg.PortHolepunch, conns, router, log.Logger, cfg.LogPackets)
	holepunch := network.NewHolepunchEndpoint(holepunchAddr, log.Logger)

	apiServer := api.NewServer(cfg.OpsAPIAddr, cfg.OpsAPIKey, directory, sessions, conns, moderation, eventBus)

	var publisher *telemetry.Publisher
	if cfg.MQTTBrokerURL != "" {
		publisher = telemetry.NewPublisher(cfg.MQTTBrokerURL, AppName, directory, sessions, 10*time.Second)
	}

	console := cli.New(directory, sessions, conns, eventBus, cancel)

	var wg sync.WaitGroup
	errCh := make(chan error, 8)

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", masterAddr).Msg("starting TCP session listener")
		if err := tcpListener.Serve(ctx); err != nil {
			log.Error().Err(err).Msg("TCP listener failed")
			errCh <- fmt.Errorf("tcp listener: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", holepunchAddr).Msg("starting UDP holepunch endpoint")
		if err := holepunch.Serve(ctx); err != nil {
			log.Warn().Err(err).Msg("holepunch endpoint failed (non-fatal)")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", cfg.OpsAPIAddr).Msg("starting ops API")
		if err := apiServer.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("ops API failed (non-fatal)")
		}
	}()

	if publisher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Str("broker", cfg.MQTTBrokerURL).Msg("starting telemetry publisher")
			if err := publisher.Run(ctx); err != nil {
				log.Warn().Err(err).Msg("telemetry publisher failed (non-fatal)")
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		console.Run(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-errCh:
		log.Error().Err(err).Msg("critical error, initiating shutdown")
		exitCode = 2
	}

	cancel()
	eventBus.Emit(context.Background(), events.Event{Type: events.EventShutdown, Source: "main"})
	conns.CloseAll()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("all listeners stopped gracefully")
	case <-time.After(10 * time.Second):
		log.Warn().Msg("shutdown timed out, forcing exit")
	}

	eventBus.Stop()
	log.Info().Msg("masterserver stopped")
	os.Exit(exitCode)
}

// logEvent is the default subscriber wired for session bind/unbind, room
// create/remove and user-kick events: a plain structured log line, so
// operators see session/room churn even with
// no CLI attached and no telemetry broker configured.
func logEvent(ctx context.Context, e events.Event) error {
	log.Info().Str("event", string(e.Type)).Str("source", e.Source).Interface("payload", e.Payload).Msg("lobby event")
	return nil
}

// seedDirectory creates the single default channel server/channel this
// deployment advertises. A real multi-region deployment would load this
// from config instead; one fixed lobby is sufficient for a single process.
func seedDirectory(directory *lobby.Directory) {
	server := directory.AddServer("Kongor")
	server.AddChannel("Lobby")
	server.AddChannel("Ranked Match")
	server.AddChannel("Casual Match")
}

// resolveBindAddress auto-detects the local bind address. With exactly one
// non-loopback interface it is used without asking; with more than one the
// operator is prompted to choose, since guessing wrong silently deafens the
// server on the interface clients actually reach it through; with none, the
// server falls back to its publicly routable address.
func resolveBindAddress() (string, error) {
	ips, err := util.ListLocalIPv4s()
	if err != nil {
		return "", fmt.Errorf("enumerate local interfaces: %w", err)
	}

	switch len(ips) {
	case 0:
		publicIP, err := util.GetPublicIP()
		if err != nil {
			return "", fmt.Errorf("no local interfaces found and public IP detection failed: %w", err)
		}
		return publicIP, nil
	case 1:
		return ips[0], nil
	default:
		return promptForAddress(ips)
	}
}

func promptForAddress(ips []string) (string, error) {
	fmt.Println("multiple network interfaces detected, choose one to bind:")
	for i, ip := range ips {
		fmt.Printf("  [%d] %s\n", i+1, ip)
	}
	fmt.Print("select interface number: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "", fmt.Errorf("no input received")
	}
	choice, err := strconv.Atoi(scanner.Text())
	if err != nil || choice < 1 || choice > len(ips) {
		return "", fmt.Errorf("invalid selection %q", scanner.Text())
	}
	return ips[choice-1], nil
}
