package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/estateops/propguard"
	"github.com/estateops/propguard/logger"
	"github.com/estateops/propguard/stores"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "convert":
		handleConvert()
	case "validate":
		handleValidate()
	case "stats":
		handleStats()
	case "demo":
		handleDemo()
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("propguard-config - Configuration tool for propguard")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  propguard-config convert <input> <output>  - Convert between formats")
	fmt.Println("  propguard-config validate <file>           - Validate configuration")
	fmt.Println("  propguard-config stats <file>              - Show configuration statistics")
	fmt.Println("  propguard-config demo <file>               - Run a guard against seeded in-memory stores")
	fmt.Println()
	fmt.Println("Supported formats: .yaml, .yml, .json")
}

func handleConvert() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: propguard-config convert <input> <output>")
		os.Exit(1)
	}

	inputFile := os.Args[2]
	outputFile := os.Args[3]

	cfg, err := loadConfig(inputFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := saveConfig(cfg, outputFile); err != nil {
		fmt.Printf("Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Converted %s -> %s\n", inputFile, outputFile)
}

func handleValidate() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: propguard-config validate <file>")
		os.Exit(1)
	}

	filename := os.Args[2]
	cfg, err := loadConfig(filename)
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Configuration is valid\n")
	fmt.Printf("  Version: %d\n", cfg.Version)
	fmt.Printf("  Context cache TTL:  %s\n", cfg.ContextTTL())
	fmt.Printf("  Lease lookup bound: %s\n", cfg.LeaseLookupTimeout())
	fmt.Printf("  Role scoping:       %s\n", onOff(!cfg.Engine.DisableRoleScoping))
	fmt.Printf("  Auto-provisioning:  %s\n", onOff(cfg.Provisioning.Enabled))
	if cfg.Provisioning.Enabled {
		fmt.Printf("  Provisioned role:   %s\n", cfg.ProvisionRole())
	}
}

func handleStats() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: propguard-config stats <file>")
		os.Exit(1)
	}

	filename := os.Args[2]
	cfg, err := loadConfig(filename)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	stat, _ := os.Stat(filename)

	fmt.Println("Configuration Statistics")
	fmt.Println("========================")
	if stat != nil {
		fmt.Printf("File size: %d bytes\n", stat.Size())
	}
	fmt.Printf("Version: %d\n", cfg.Version)
	fmt.Println()

	fmt.Println("Engine Configuration:")
	fmt.Printf("  Context cache TTL:     %dms (effective %s)\n", cfg.Engine.ContextCacheTTLMs, cfg.ContextTTL())
	fmt.Printf("  Lease lookup timeout:  %dms (effective %s)\n", cfg.Engine.LeaseLookupTimeoutMs, cfg.LeaseLookupTimeout())
	fmt.Printf("  Role scoping disabled: %v\n", cfg.Engine.DisableRoleScoping)
	fmt.Printf("  Ristretto counters:    %d\n", cfg.Engine.RistrettoNumCounter)
	fmt.Printf("  Ristretto max cost:    %d\n", cfg.Engine.RistrettoMaxCost)
	fmt.Printf("  Ristretto buffer:      %d\n", cfg.Engine.RistrettoBuffer)
	fmt.Println()

	fmt.Println("Provisioning:")
	fmt.Printf("  Enabled:      %v\n", cfg.Provisioning.Enabled)
	fmt.Printf("  Default role: %s\n", cfg.ProvisionRole())
}

// staticSession hands the demo guard a fixed signed-in principal.
type staticSession struct {
	principal *propguard.Principal
}

func (s *staticSession) CurrentPrincipal(ctx context.Context) (*propguard.Principal, error) {
	return s.principal, nil
}

func (s *staticSession) ClearSession(ctx context.Context) error {
	s.principal = nil
	return nil
}

func handleDemo() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: propguard-config demo <file>")
		os.Exit(1)
	}

	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	now := time.Now()

	profiles := stores.NewMemoryProfileStore()
	properties := stores.NewMemoryPropertyStore()
	contracts := stores.NewMemoryContractStore()

	profiles.EnsureProfile(ctx, &propguard.Profile{ID: "owner-1", Email: "owner@example.com", Role: propguard.RoleOwner})
	properties.CreateProperty(ctx, &propguard.Property{ID: "p1", OwnerID: "owner-1", Name: "Villa A", Status: "active", CreatedAt: now, UpdatedAt: now})
	properties.CreateProperty(ctx, &propguard.Property{ID: "p2", OwnerID: "owner-1", Name: "Flat B", Status: "active", CreatedAt: now, UpdatedAt: now})
	properties.CreateProperty(ctx, &propguard.Property{ID: "p3", OwnerID: "owner-2", Name: "Office C", Status: "active", CreatedAt: now, UpdatedAt: now})

	guard := propguard.NewGuard(cfg,
		&staticSession{principal: &propguard.Principal{ID: "owner-1", Email: "owner@example.com"}},
		propguard.Stores{
			Profiles:      profiles,
			Properties:    properties,
			Contracts:     contracts,
			Maintenance:   stores.NewMemoryMaintenanceStore(),
			Vouchers:      stores.NewMemoryVoucherStore(),
			Invoices:      stores.NewMemoryInvoiceStore(),
			Bids:          stores.NewMemoryBidStore(),
			Notifications: stores.NewMemoryNotificationStore(),
		},
		nil, logger.NewPhusluLogger())

	resp := guard.ListProperties(ctx, nil)
	if resp.Error != nil {
		fmt.Printf("List failed: %s\n", resp.Error.Message)
		os.Exit(1)
	}

	fmt.Printf("Demo guard resolved owner-1 and listed %d properties:\n", resp.Count)
	for _, p := range resp.Data {
		fmt.Printf("  %s  %s\n", p.ID, p.Name)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func loadConfig(filename string) (*propguard.Config, error) {
	loader := propguard.NewConfigLoader()
	return loader.LoadFile(filename)
}

func saveConfig(cfg *propguard.Config, filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	var data []byte
	var err error

	switch ext {
	case ".yaml", ".yml":
		data, err = cfg.ToYAML()
	case ".json":
		data, err = cfg.ToJSON()
	default:
		return fmt.Errorf("unsupported file format: %s", ext)
	}

	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
