package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	gametypes "github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/log"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/syncclient"
)

// A small polling console: in gm mode it watches the shared roster for a
// campaign/scenario pair, in player mode it watches one player's record
// through their PIN.
func main() {
	serverURL := flag.String("server-url", "http://localhost:8080", "Server base URL")
	mode := flag.String("mode", "gm", "Client mode (gm or player)")
	campaignID := flag.Int("campaign", 0, "Campaign id (gm mode)")
	scenarioID := flag.Int("scenario", 0, "Scenario id (gm mode)")
	pin := flag.String("pin", "", "Player PIN (player mode)")
	interval := flag.Duration("interval", syncclient.DefaultPollInterval, "Polling interval")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	log.SetDefaultLogger(log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := syncclient.New(*serverURL)

	switch *mode {
	case "gm":
		if *campaignID == 0 || *scenarioID == 0 {
			panic("campaign and scenario are required in gm mode")
		}
		client.StartGMPolling(ctx, *campaignID, *scenarioID, *interval, func(players []gametypes.SyncPlayer) {
			for _, player := range players {
				fmt.Printf("[%s] %d/%d hp, %d xp, %d coins\n",
					player.Name, player.HealthPoints, player.HealthPointsMax, player.ScenarioXp, player.Coins)
			}
		})
	case "player":
		if *pin == "" {
			panic("pin is required in player mode")
		}
		resp, err := client.FetchPlayerData(ctx, *pin)
		if err != nil {
			panic(fmt.Sprintf("Failed to resolve PIN: %v", err))
		}
		log.Info("Connected as %s (campaign %d, scenario %d)",
			resp.Session.PlayerName, resp.Session.CampaignID, resp.Session.GameID)
		client.StartPlayerPolling(ctx, *pin, *interval, func(player gametypes.SyncPlayer) {
			fmt.Printf("[%s] %d/%d hp, %d xp, %d coins\n",
				player.Name, player.HealthPoints, player.HealthPointsMax, player.ScenarioXp, player.Coins)
		})
	default:
		panic(fmt.Sprintf("Unknown mode: %s", *mode))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	client.StopPolling()
	time.Sleep(100 * time.Millisecond)
}
