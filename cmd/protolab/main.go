package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pavel-gr/protolab/internal/config"
	"github.com/pavel-gr/protolab/internal/dnsclient"
	"github.com/pavel-gr/protolab/internal/dorasim"
	"github.com/pavel-gr/protolab/internal/journal"
	"github.com/pavel-gr/protolab/pkg/dns"
	"github.com/pavel-gr/protolab/pkg/wire"
)

const usage = `Usage: protolab [flags] <command> [args]

Commands:
  lookup <domain> [type]   resolve a domain (type defaults to A)
  dora                     run a local DHCP DISCOVER/OFFER/REQUEST/ACK exchange
  hexdump [file]           hex-dump a file, or stdin when no file is given

Flags:
`

func main() {
	var configFile string
	var verbose bool
	flag.StringVar(&configFile, "config", "protolab.yaml", "Configuration file path")
	flag.StringVar(&configFile, "c", "protolab.yaml", "Configuration file path (shorthand)")
	flag.BoolVar(&verbose, "verbose", false, "Hex-dump every packet sent and received")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := loadConfig(configFile)
	if verbose {
		cfg.Logging.Verbose = true
	}

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "lookup":
		err = runLookup(cfg, flag.Args()[1:])
	case "dora":
		err = runDora(cfg)
	case "hexdump":
		err = runHexdump(flag.Args()[1:])
	default:
		log.Fatalf("Unknown command: %s", cmd)
	}
	if err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

func loadConfig(configFile string) *config.Config {
	absPath, _ := filepath.Abs(configFile)
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		log.Printf("Failed to load config from %s: %v, using defaults", absPath, err)
		return config.DefaultConfig()
	}
	log.Printf("Loaded configuration from %s", absPath)
	return cfg
}

func runLookup(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("lookup needs a domain")
	}
	domain := args[0]

	qtype := dns.TYPE_A
	if len(args) > 1 {
		parsed, ok := dns.TypeFromString(args[1])
		if !ok {
			return fmt.Errorf("unsupported record type %q", args[1])
		}
		qtype = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.DNS.MaxRetries+1)*cfg.DNS.Timeout)
	defer cancel()

	jnl, err := journal.New(ctx, cfg.Journal)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer jnl.Close()

	client := dnsclient.NewClient(dnsclient.Config{
		Server:     cfg.DNS.Server,
		Timeout:    cfg.DNS.Timeout,
		MaxRetries: cfg.DNS.MaxRetries,
		Verbose:    cfg.Logging.Verbose,
	})

	response, err := client.Resolve(ctx, domain, qtype)
	if err != nil {
		return err
	}

	if len(response.Answers) == 0 {
		fmt.Printf("No %s records for %s\n", qtype, domain)
		return nil
	}

	answers := make([]string, 0, len(response.Answers))
	for _, record := range response.Answers {
		fmt.Println(record)
		answers = append(answers, record.Data)
	}

	entry := journal.LookupEntry{
		Domain:     domain,
		Type:       qtype.String(),
		Server:     cfg.DNS.Server,
		Answers:    answers,
		ResolvedAt: time.Now().UTC(),
	}
	if err := jnl.RecordLookup(ctx, entry); err != nil {
		log.Printf("Failed to record lookup: %v", err)
	}

	return nil
}

func runDora(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	jnl, err := journal.New(ctx, cfg.Journal)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer jnl.Close()

	serverTransport, err := dorasim.NewUDPTransport(
		fmt.Sprintf("127.0.0.1:%d", cfg.DHCP.ServerPort))
	if err != nil {
		return fmt.Errorf("failed to bind server port: %w", err)
	}
	defer serverTransport.Close()

	clientTransport, err := dorasim.NewUDPTransport(
		fmt.Sprintf("127.0.0.1:%d", cfg.DHCP.ClientPort))
	if err != nil {
		return fmt.Errorf("failed to bind client port: %w", err)
	}
	defer clientTransport.Close()

	serverCfg, err := serverConfigFrom(&cfg.DHCP)
	if err != nil {
		return err
	}

	mac, err := config.ParseMAC(cfg.DHCP.MAC)
	if err != nil {
		return fmt.Errorf("invalid client MAC: %w", err)
	}

	server := dorasim.NewServer(serverCfg, serverTransport)
	client := dorasim.NewClient(dorasim.ClientConfig{
		MAC:        mac,
		ServerAddr: serverTransport.LocalAddr(),
		Timeout:    cfg.DHCP.Timeout,
	}, clientTransport)

	serverDone := make(chan error, 1)
	go func() { serverDone <- server.Run(ctx) }()

	lease, err := client.Run(ctx)
	if err != nil {
		return fmt.Errorf("exchange failed: %w", err)
	}
	if err := <-serverDone; err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	fmt.Printf("Lease confirmed: %s (mask %s, router %s, dns %s) for %d seconds\n",
		wire.IPv4String(lease.Address[:], 0),
		wire.IPv4String(lease.SubnetMask[:], 0),
		wire.IPv4String(lease.Router[:], 0),
		wire.IPv4String(lease.DNSServer[:], 0),
		lease.LeaseTime)

	entry := journal.LeaseEntry{
		MAC:         cfg.DHCP.MAC,
		XID:         lease.XID,
		Address:     wire.IPv4String(lease.Address[:], 0),
		ServerID:    wire.IPv4String(lease.ServerID[:], 0),
		LeaseTime:   lease.LeaseTime,
		CompletedAt: time.Now().UTC(),
	}
	if err := jnl.RecordLease(ctx, entry); err != nil {
		log.Printf("Failed to record lease: %v", err)
	}

	return nil
}

func serverConfigFrom(cfg *config.DHCPConfig) (dorasim.ServerConfig, error) {
	out := dorasim.ServerConfig{
		LeaseTime: cfg.LeaseTime,
		Timeout:   cfg.Timeout,
	}

	for _, field := range []struct {
		raw  string
		dest *[4]byte
	}{
		{cfg.OfferedIP, &out.OfferedIP},
		{cfg.ServerIP, &out.ServerIP},
		{cfg.SubnetMask, &out.SubnetMask},
		{cfg.Router, &out.Router},
		{cfg.DNSServer, &out.DNSServer},
	} {
		addr, err := wire.ParseIPv4(field.raw)
		if err != nil {
			return dorasim.ServerConfig{}, fmt.Errorf("invalid address %q: %w", field.raw, err)
		}
		*field.dest = addr
	}

	return out, nil
}

func runHexdump(args []string) error {
	input := os.Stdin
	if len(args) > 0 {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer file.Close()
		input = file
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	fmt.Print(wire.HexDump(data))
	return nil
}
