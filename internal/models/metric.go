package models

import (
	"errors"
	"fmt"
)

// Metric identifies one of the fixed numeric indicator columns.
type Metric int

const (
	CoalShareElec Metric = iota
	GasShareElec
	OilShareElec
	NuclearShareElec
	HydroShareElec
	SolarShareElec
	WindShareElec
	BiofuelShareElec
	FossilShareElec
	LowCarbonShareElec
	RenewablesShareElec

	CoalShareEnergy
	GasShareEnergy
	OilShareEnergy
	NuclearShareEnergy
	HydroShareEnergy
	SolarShareEnergy
	WindShareEnergy
	BiofuelShareEnergy
	FossilShareEnergy
	LowCarbonShareEnergy
	RenewablesShareEnergy

	ElectricityDemand
	ElectricityGeneration
	PrimaryEnergyConsumption
	GreenhouseGasEmissions
	NetElecImports
	NetElecImportsShareDemand
	EnergyPerGDP
	CarbonIntensityElec

	MetricCount
)

// Column names as they appear in the source CSV and the SQLite schema.
var metricColumns = [MetricCount]string{
	CoalShareElec:       "coal_share_elec",
	GasShareElec:        "gas_share_elec",
	OilShareElec:        "oil_share_elec",
	NuclearShareElec:    "nuclear_share_elec",
	HydroShareElec:      "hydro_share_elec",
	SolarShareElec:      "solar_share_elec",
	WindShareElec:       "wind_share_elec",
	BiofuelShareElec:    "biofuel_share_elec",
	FossilShareElec:     "fossil_share_elec",
	LowCarbonShareElec:  "low_carbon_share_elec",
	RenewablesShareElec: "renewables_share_elec",

	CoalShareEnergy:       "coal_share_energy",
	GasShareEnergy:        "gas_share_energy",
	OilShareEnergy:        "oil_share_energy",
	NuclearShareEnergy:    "nuclear_share_energy",
	HydroShareEnergy:      "hydro_share_energy",
	SolarShareEnergy:      "solar_share_energy",
	WindShareEnergy:       "wind_share_energy",
	BiofuelShareEnergy:    "biofuel_share_energy",
	FossilShareEnergy:     "fossil_share_energy",
	LowCarbonShareEnergy:  "low_carbon_share_energy",
	RenewablesShareEnergy: "renewables_share_energy",

	ElectricityDemand:         "electricity_demand",
	ElectricityGeneration:     "electricity_generation",
	PrimaryEnergyConsumption:  "primary_energy_consumption",
	GreenhouseGasEmissions:    "greenhouse_gas_emissions",
	NetElecImports:            "net_elec_imports",
	NetElecImportsShareDemand: "net_elec_imports_share_demand",
	EnergyPerGDP:              "energy_per_gdp",
	CarbonIntensityElec:       "carbon_intensity_elec",
}

var metricByColumn = func() map[string]Metric {
	m := make(map[string]Metric, MetricCount)
	for i, c := range metricColumns {
		m[c] = Metric(i)
	}
	return m
}()

var ErrUnknownMetric = errors.New("unknown metric")

// Column returns the source column name of m.
func (m Metric) Column() string {
	if m < 0 || m >= MetricCount {
		return fmt.Sprintf("metric(%d)", int(m))
	}
	return metricColumns[m]
}

func (m Metric) String() string { return m.Column() }

// IsShare reports whether m is a percentage share (0-100).
func (m Metric) IsShare() bool {
	return m <= RenewablesShareEnergy || m == NetElecImportsShareDemand
}

// ParseMetric resolves a column name to a Metric.
func ParseMetric(column string) (Metric, error) {
	if m, ok := metricByColumn[column]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, column)
}

// AllMetrics returns every metric in column order.
func AllMetrics() []Metric {
	out := make([]Metric, MetricCount)
	for i := range out {
		out[i] = Metric(i)
	}
	return out
}
