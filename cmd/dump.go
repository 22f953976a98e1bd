package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/andig/vinfast/api"
	"github.com/andig/vinfast/core"
	"github.com/andig/vinfast/util"
	"github.com/andig/vinfast/vehicle"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dumpCmd fetches the vehicle state once and prints it
var dumpCmd = &cobra.Command{
	Use:              "dump",
	Short:            "Fetch the vehicle state once and print it",
	PersistentPreRun: persistentConfig,
	Run:              runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) {
	util.LogLevel(viper.GetString("log"), viper.GetStringMapString("levels"))

	conf, err := loadConfigFile(cfgFile)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	v, err := vehicle.NewVinFastFromConfig(conf.Vehicle)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	coordinator := core.NewCoordinator(util.NewLogger("core"), v, core.Config{
		Budget: conf.Budget,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := coordinator.RunOnce(ctx); err != nil {
		log.FATAL.Fatal(err)
	}

	dumpSnapshot(coordinator.Snapshot())
}

func dumpSnapshot(s *api.Snapshot) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Value"})

	add := func(key, val string) {
		table.Append([]string{key, val})
	}
	num := func(key string, val *float64, unit string) {
		if val != nil {
			add(key, fmt.Sprintf("%.1f %s", *val, unit))
		}
	}
	flag := func(key string, val *bool) {
		if val != nil {
			add(key, fmt.Sprintf("%t", *val))
		}
	}

	add("vin", s.VIN)
	add("name", s.Name)
	add("model", s.Model)
	if s.Year != 0 {
		add("year", fmt.Sprintf("%d", s.Year))
	}
	add("time", s.Time.Format(time.RFC3339))

	num("soc", s.Soc, "%")
	num("range", s.Range, "mi")
	num("odometer", s.Odometer, "mi")
	add("odometer source", string(s.OdometerSource))
	if s.ChargeStatus != nil {
		add("charge status", s.ChargeStatus.String())
	}
	if s.TimeToFull != nil {
		add("time to full", fmt.Sprintf("%d min", *s.TimeToFull))
	}
	num("target soc", s.TargetSoc, "%")
	if s.Gear != nil {
		add("gear", s.Gear.String())
	}
	num("speed", s.Speed, "mph")
	num("outside temp", s.OutsideTemp, "°F")
	num("inside temp", s.InsideTemp, "°F")
	num("tire pressure fl", s.TirePressureFL, "psi")
	num("tire pressure fr", s.TirePressureFR, "psi")
	num("tire pressure rl", s.TirePressureRL, "psi")
	num("tire pressure rr", s.TirePressureRR, "psi")
	num("aux battery", s.AuxBattery, "V")
	flag("ignition", s.Ignition)
	flag("climate", s.ClimateActive)
	flag("locked", s.Locked)
	flag("plugged in", s.PluggedIn)
	flag("windows open", s.WindowsOpen)
	flag("trunk open", s.TrunkOpen)
	flag("hood open", s.HoodOpen)
	if s.Latitude != nil && s.Longitude != nil {
		add("position", fmt.Sprintf("%.5f,%.5f", *s.Latitude, *s.Longitude))
	}

	table.Render()
}
