// Package metrics records configuration loads.
//
// The loader reports every finished load to a Recorder. Nop is the default;
// Prometheus exposes hjarta_config_loads_total, a load duration histogram
// and hjarta_config_field_errors_total, all labelled by target type.
package metrics
