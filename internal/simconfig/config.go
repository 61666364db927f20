// Package simconfig loads HCL configuration for the simulation driver.
package simconfig

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete simulation configuration.
type Config struct {
	Simulation SimulationSettings `hcl:"simulation,block"`
	Tables     []TableConfig      `hcl:"table,block"`
}

// SimulationSettings contains run-level configuration.
type SimulationSettings struct {
	Hands    int    `hcl:"hands,optional"`
	Seed     int64  `hcl:"seed,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TableConfig defines one simulated table.
type TableConfig struct {
	Name         string       `hcl:"name,label"`
	InitialChips int          `hcl:"initial_chips,optional"`
	SmallBlind   int          `hcl:"small_blind"`
	BigBlind     int          `hcl:"big_blind"`
	Seats        []SeatConfig `hcl:"seat,block"`
}

// SeatConfig defines one player at a table.
type SeatConfig struct {
	Name     string `hcl:"name,label"`
	Strategy string `hcl:"strategy,optional"`
	Chips    int    `hcl:"chips,optional"`
}

// Strategies the driver knows how to build.
var validStrategies = map[string]bool{
	"call":  true,
	"rand":  true,
	"raise": true,
	"chart": true,
}

// Default returns the default simulation configuration.
func Default() *Config {
	return &Config{
		Simulation: SimulationSettings{
			Hands:    100,
			Seed:     1,
			LogLevel: "info",
		},
		Tables: []TableConfig{
			{
				Name:         "main",
				InitialChips: 1000,
				SmallBlind:   50,
				BigBlind:     100,
				Seats: []SeatConfig{
					{Name: "caller", Strategy: "call"},
					{Name: "gambler", Strategy: "rand"},
					{Name: "maniac", Strategy: "raise"},
					{Name: "nit", Strategy: "chart"},
				},
			},
		},
	}
}

// Load loads simulation configuration from an HCL file. A missing file
// yields the default configuration.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Simulation.Hands == 0 {
		c.Simulation.Hands = 100
	}
	if c.Simulation.Seed == 0 {
		c.Simulation.Seed = 1
	}
	if c.Simulation.LogLevel == "" {
		c.Simulation.LogLevel = "info"
	}
	for i := range c.Tables {
		table := &c.Tables[i]
		if table.InitialChips == 0 {
			table.InitialChips = table.BigBlind * 10
		}
		for j := range table.Seats {
			if table.Seats[j].Strategy == "" {
				table.Seats[j].Strategy = "call"
			}
		}
	}
}

// Validate validates the simulation configuration.
func (c *Config) Validate() error {
	if c.Simulation.Hands < 1 {
		return fmt.Errorf("hands must be at least 1, got %d", c.Simulation.Hands)
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	names := make(map[string]bool, len(c.Tables))
	for _, table := range c.Tables {
		if names[table.Name] {
			return fmt.Errorf("duplicate table name %s", table.Name)
		}
		names[table.Name] = true

		if table.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", table.Name)
		}
		if table.BigBlind <= table.SmallBlind {
			return fmt.Errorf("table %s: big blind must be greater than small blind", table.Name)
		}
		if len(table.Seats) < 2 {
			return fmt.Errorf("table %s: at least two seats required", table.Name)
		}
		if table.InitialChips < table.BigBlind {
			return fmt.Errorf("table %s: initial chips %d cannot cover the big blind %d",
				table.Name, table.InitialChips, table.BigBlind)
		}

		seatNames := make(map[string]bool, len(table.Seats))
		for _, seat := range table.Seats {
			if seatNames[seat.Name] {
				return fmt.Errorf("table %s: duplicate seat name %s", table.Name, seat.Name)
			}
			seatNames[seat.Name] = true

			if !validStrategies[seat.Strategy] {
				return fmt.Errorf("table %s: seat %s: invalid strategy %s", table.Name, seat.Name, seat.Strategy)
			}
			if seat.Chips < 0 {
				return fmt.Errorf("table %s: seat %s: chips must not be negative", table.Name, seat.Name)
			}
		}
	}

	return nil
}
