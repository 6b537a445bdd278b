package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"evmex/pkg/config"
	"evmex/pkg/fetch"
	"evmex/pkg/rpc"
	"evmex/pkg/server"
	"evmex/pkg/tui"
)

// Version should be set during build
var Version = "dev"

var testTimeout = 30 * time.Second

type testReport struct {
	ConfigPath    string `json:"config_path"`
	RPCURL        string `json:"rpc_url"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	ChainID       int64  `json:"chain_id,omitempty"`
	ClientVersion string `json:"client_version,omitempty"`
	LatestBlock   uint64 `json:"latest_block,omitempty"`
}

func main() {
	testFlag := flag.Bool("t", false, "Test RPC connectivity and exit")
	testLongFlag := flag.Bool("test", false, "Test RPC connectivity and exit")
	jsonFlag := flag.Bool("json", false, "Output test results as JSON")
	configFlag := flag.String("config", "", "Path to configuration file")
	rpcFlag := flag.String("rpc", "", "Ethereum JSON-RPC endpoint (overrides config)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	serverFlag := flag.Bool("server", false, "Run in headless server mode")
	portFlag := flag.Int("port", 8080, "Port for API server")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("evmex version %s\n", Version)
		os.Exit(0)
	}

	cfgInput := *configFlag
	if cfgInput == "" && len(flag.Args()) > 0 {
		cfgInput = flag.Args()[0]
	}
	path, err := config.GetConfigPath(cfgInput)
	if err != nil {
		fmt.Printf("Error determining config path: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		fmt.Printf("Error loading config from %s: %v\n", path, err)
		os.Exit(1)
	}

	rpcURL := cfg.RPCURL
	if *rpcFlag != "" {
		rpcURL = *rpcFlag
	}
	if rpcURL == "" {
		fmt.Println("Error: no RPC endpoint configured.")
		fmt.Printf("Set rpc_url in %s or pass -rpc.\n", path)
		os.Exit(1)
	}

	if *testFlag || *testLongFlag {
		os.Exit(runConnectivityTest(rpcURL, path, *jsonFlag))
	}

	ctx := context.Background()
	client, err := rpc.Dial(ctx, rpcURL)
	if err != nil {
		fmt.Printf("Error connecting to %s: %v\n", rpcURL, err)
		os.Exit(1)
	}
	defer client.Close()

	srv := server.NewServer(client)
	go func() {
		if err := srv.Start(*portFlag); err != nil {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	if *serverFlag {
		fmt.Printf("Running in server mode on port %d...\n", *portFlag)
		select {} // Keep alive
	}

	fetcher := fetch.New(client)
	fetcher.StartNetworkLoop(ctx)

	tui.Start(fetcher, cfg, path, Version)
}

func runConnectivityTest(rpcURL, configPath string, asJSON bool) int {
	report := testReport{ConfigPath: configPath, RPCURL: rpcURL, Status: "ok"}

	if !asJSON {
		fmt.Printf("Testing RPC endpoint: %s\n", rpcURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	client, err := rpc.Dial(ctx, rpcURL)
	if err != nil {
		report.Status = "error"
		report.Error = err.Error()
		emitReport(report, asJSON)
		return 1
	}
	defer client.Close()

	report.ChainID = client.ChainID().Int64()
	if !asJSON {
		fmt.Printf("  Connected (ChainID: %d)\n", report.ChainID)
	}

	info, err := client.GetNetworkInfo(ctx)
	if err != nil {
		report.Status = "error"
		report.Error = fmt.Sprintf("Failed to fetch network info: %v", err)
		emitReport(report, asJSON)
		return 1
	}
	report.ClientVersion = info.ClientVersion
	report.LatestBlock = info.LatestBlock

	if !asJSON {
		if info.ClientVersion != "" {
			fmt.Printf("  Client: %s\n", info.ClientVersion)
		}
		fmt.Printf("  Latest block: %d\n", info.LatestBlock)
		fmt.Println("OK")
	}
	emitReport(report, asJSON)
	return 0
}

func emitReport(report testReport, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		return
	}
	if report.Error != "" {
		fmt.Printf("Failed: %s\n", report.Error)
	}
}
