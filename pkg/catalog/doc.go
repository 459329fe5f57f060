// Package catalog holds the board firmware catalog and the high speed
// datalog device model.
//
// The catalog describes, per board and firmware, the characteristics the
// firmware exposes and its firmware upgrade capabilities. It is loaded
// once from YAML (or JSON) and read-only afterwards:
//
//	cat, err := catalog.Load("catalog.yaml")
//	fw, ok := cat.Firmware(0x80, 0x0E)
//
// The device model types (Device, Sensor, SubSensorDescriptor and the
// status types) are shared with the HSDataLogConfig feature, which
// receives them as JSON from the board.
package catalog
