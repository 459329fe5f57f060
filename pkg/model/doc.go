// Package model defines the value types shared by feature decoders.
//
// A decoded notification is an Update carrying a Sample. Every Sample is a
// composition of Field values: a name, an optional unit, optional bounds and
// a typed value. Bounds describe the physical range of a measurement and are
// never enforced while decoding; consumers decide what to do with readings
// outside them.
//
// # Feature Identity
//
// A feature is addressed by its FeatureType category and a numeric id. The
// category selects the GATT characteristic UUID layout:
//
//	Standard        mask bits in the first UUID group, many features per characteristic
//	Extended        one id per characteristic
//	GeneralPurpose  16-bit id
//	External*       vendor and Bluetooth SIG characteristics
package model
