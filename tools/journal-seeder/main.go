// journal-seeder writes synthetic journal files for exercising the pipeline
// end to end: realistic event streams per carrier, plus optional duplicate
// and truncated lines to prove the idempotence gate and malformed-line
// handling hold up.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"
)

var (
	outDir     string
	carriers   int
	events     int
	files      int
	seed       int64
	duplicates int
	truncated  int
)

var rootCmd = &cobra.Command{
	Use:   "journal-seeder",
	Short: "Generate synthetic journal files for a running carrierlink instance",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write journal files into")
	rootCmd.Flags().IntVarP(&carriers, "carriers", "c", 3, "number of carriers to simulate")
	rootCmd.Flags().IntVarP(&events, "events", "n", 100, "events per journal file")
	rootCmd.Flags().IntVarP(&files, "files", "f", 1, "number of journal files (sessions)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 means time-based)")
	rootCmd.Flags().IntVar(&duplicates, "duplicates", 0, "duplicate lines to inject per file")
	rootCmd.Flags().IntVar(&truncated, "truncated", 0, "truncated lines to inject per file")
}

type carrier struct {
	callsign  string
	carrierID int64
	name      string
	fuel      int
	balance   int64
	system    string
}

var dockingValues = []string{"all", "friends", "squadron", "squadronfriends"}

var serviceTypes = []string{"refuel", "repair", "rearm", "shipyard", "outfitting", "exploration", "voucherredemption"}

func run(cmd *cobra.Command, _ []string) error {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	faker := gofakeit.New(uint64(seed))

	fleet := make([]*carrier, 0, carriers)
	for i := 0; i < carriers; i++ {
		fleet = append(fleet, &carrier{
			callsign:  randomCallsign(rng),
			carrierID: int64(3700000000 + rng.Intn(100000000)),
			name:      strings.ToUpper(faker.NounConcrete()),
			fuel:      200 + rng.Intn(800),
			balance:   int64(rng.Intn(5_000_000_000)),
			system:    randomSystem(faker, rng),
		})
	}

	clock := time.Now().UTC().Add(-time.Duration(files) * 2 * time.Hour)

	for f := 0; f < files; f++ {
		name := fmt.Sprintf("Journal.%s.log", clock.Format("2006-01-02T150405"))
		path := filepath.Join(outDir, name)

		lines, err := sessionLines(fleet, rng, faker, &clock)
		if err != nil {
			return err
		}

		lines = injectDuplicates(lines, rng, duplicates)
		lines = injectTruncated(lines, rng, truncated)

		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		cmd.Printf("wrote %s (%d lines)\n", path, len(lines))

		clock = clock.Add(2 * time.Hour)
	}

	cmd.Printf("seed: %d\n", seed)
	return nil
}

// sessionLines produces one session: every carrier opens with a stats event
// (the game does this on login), then random activity follows.
func sessionLines(fleet []*carrier, rng *rand.Rand, faker *gofakeit.Faker, clock *time.Time) ([]string, error) {
	lines := make([]string, 0, events+len(fleet))

	for _, c := range fleet {
		line, err := marshalEvent(*clock, "CarrierStats", map[string]any{
			"Callsign":     c.callsign,
			"CarrierID":    c.carrierID,
			"Name":         c.name,
			"FuelLevel":    c.fuel,
			"JumpCooldown": 0,
		})
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		*clock = clock.Add(time.Duration(1+rng.Intn(30)) * time.Second)
	}

	for i := 0; i < events; i++ {
		c := fleet[rng.Intn(len(fleet))]
		line, err := randomEvent(c, rng, faker, *clock)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		*clock = clock.Add(time.Duration(5+rng.Intn(300)) * time.Second)
	}

	return lines, nil
}

func randomEvent(c *carrier, rng *rand.Rand, faker *gofakeit.Faker, ts time.Time) (string, error) {
	switch rng.Intn(6) {
	case 0:
		c.system = randomSystem(faker, rng)
		c.fuel -= 30 + rng.Intn(40)
		if c.fuel < 0 {
			c.fuel = 0
		}
		return marshalEvent(ts, "CarrierJump", map[string]any{
			"CarrierID":  c.carrierID,
			"StarSystem": c.system,
		})
	case 1:
		return marshalEvent(ts, "CarrierLocation", map[string]any{
			"CarrierID":  c.carrierID,
			"StarSystem": c.system,
		})
	case 2:
		c.balance += int64(rng.Intn(20_000_000)) - 10_000_000
		if c.balance < 0 {
			c.balance = 0
		}
		reserve := c.balance / int64(4+rng.Intn(4))
		return marshalEvent(ts, "CarrierFinance", map[string]any{
			"CarrierID":        c.carrierID,
			"CarrierBalance":   c.balance,
			"ReserveBalance":   reserve,
			"AvailableBalance": c.balance - reserve,
		})
	case 3:
		return marshalEvent(ts, "CarrierDockingPermission", map[string]any{
			"CarrierID":      c.carrierID,
			"DockingAccess":  dockingValues[rng.Intn(len(dockingValues))],
			"AllowNotorious": rng.Intn(2) == 0,
		})
	case 4:
		operation := "Activate"
		if rng.Intn(2) == 0 {
			operation = "Deactivate"
		}
		return marshalEvent(ts, "CarrierCrewServices", map[string]any{
			"CarrierID": c.carrierID,
			"CrewRole":  serviceTypes[rng.Intn(len(serviceTypes))],
			"Operation": operation,
			"CrewName":  faker.Name(),
		})
	default:
		c.name = strings.ToUpper(faker.NounConcrete())
		return marshalEvent(ts, "CarrierNameChanged", map[string]any{
			"CarrierID": c.carrierID,
			"Name":      c.name,
		})
	}
}

func marshalEvent(ts time.Time, event string, fields map[string]any) (string, error) {
	payload := map[string]any{
		"timestamp": ts.Format(time.RFC3339),
		"event":     event,
	}
	for k, v := range fields {
		payload[k] = v
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s event: %w", event, err)
	}
	return string(data), nil
}

// randomCallsign mimics the game's XXX-XXX format.
func randomCallsign(rng *rand.Rand) string {
	const letters = "ABCDEFGHJKLMNPQRTVWXYZ"
	const digits = "0123456789"
	b := make([]byte, 7)
	for i := 0; i < 3; i++ {
		b[i] = letters[rng.Intn(len(letters))]
	}
	b[3] = '-'
	for i := 4; i < 7; i++ {
		b[i] = digits[rng.Intn(len(digits))]
	}
	return string(b)
}

func randomSystem(faker *gofakeit.Faker, rng *rand.Rand) string {
	word := faker.Word()
	if len(word) > 0 {
		word = strings.ToUpper(word[:1]) + word[1:]
	}
	return fmt.Sprintf("%s %d", word, rng.Intn(9000)+1000)
}

// injectDuplicates re-appends existing lines verbatim, simulating the
// full-file re-read the monitor performs on every write.
func injectDuplicates(lines []string, rng *rand.Rand, n int) []string {
	for i := 0; i < n && len(lines) > 0; i++ {
		lines = append(lines, lines[rng.Intn(len(lines))])
	}
	return lines
}

// injectTruncated cuts random lines short, simulating a crash mid-write.
func injectTruncated(lines []string, rng *rand.Rand, n int) []string {
	for i := 0; i < n && len(lines) > 0; i++ {
		src := lines[rng.Intn(len(lines))]
		if len(src) > 10 {
			lines = append(lines, src[:len(src)/2])
		}
	}
	return lines
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
