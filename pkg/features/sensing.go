package features

import (
	"fmt"

	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

const (
	colorAmbientLightRecord = 8
	gnssRecord              = 14
	qvarRecord              = 4
	fitnessActivityRecord   = 3
)

// ColorAmbientLightData is the light level, color temperature and UV index.
type ColorAmbientLightData struct {
	Lux     model.Field[uint32]
	CCT     model.Field[uint16]
	UVIndex model.Field[uint16]
}

func (d ColorAmbientLightData) Fields() []model.AnyField {
	return []model.AnyField{d.Lux, d.CCT, d.UVIndex}
}

func extractColorAmbientLight(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, colorAmbientLightRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	lux, _ := numconv.LittleEndian.UInt32(data, off)
	cct, _ := numconv.LittleEndian.UInt16(data, off+4)
	uv, _ := numconv.LittleEndian.UInt16(data, off+6)
	d := ColorAmbientLightData{
		Lux:     model.NewField("Lux", "Lux", lux).WithRange(0, 400000),
		CCT:     model.NewField("Correlated Color Temperature", "K", cct).WithRange(0, 20000),
		UVIndex: model.NewField("UV Index", "", uv).WithRange(0, 12),
	}
	return newUpdate(f, ts, data, off, colorAmbientLightRecord, d), nil
}

// GNSSData is a position fix.
type GNSSData struct {
	Latitude   model.Field[float32]
	Longitude  model.Field[float32]
	Altitude   model.Field[float32]
	Satellites model.Field[uint8]
	Quality    model.Field[uint8]
}

func (d GNSSData) Fields() []model.AnyField {
	return []model.AnyField{d.Latitude, d.Longitude, d.Altitude, d.Satellites, d.Quality}
}

func extractGNSS(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, gnssRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	lat, _ := numconv.LittleEndian.Int32(data, off)
	lon, _ := numconv.LittleEndian.Int32(data, off+4)
	alt, _ := numconv.LittleEndian.Int32(data, off+8)
	d := GNSSData{
		Latitude:   model.NewField("Latitude", "Lat", float32(float64(lat)/1e7)).WithRange(-90, 90),
		Longitude:  model.NewField("Longitude", "Lon", float32(float64(lon)/1e7)).WithRange(-180, 180),
		Altitude:   model.NewField("Altitude", "m", float32(alt)/1e3),
		Satellites: model.NewField("Num Satellites", "", data[off+12]),
		Quality:    model.NewField("Sig Quality", "dB-Hz", data[off+13]),
	}
	return newUpdate(f, ts, data, off, gnssRecord, d), nil
}

// QVARData is an electric charge variation reading. Flag, DQVAR and
// Parameter are nil when the record omits them.
type QVARData struct {
	QVAR      model.Field[int32]
	Flag      *model.Field[uint8]
	DQVAR     *model.Field[int32]
	Parameter *model.Field[int32]
}

func (d QVARData) Fields() []model.AnyField {
	out := []model.AnyField{d.QVAR}
	if d.Flag != nil {
		out = append(out, *d.Flag)
	}
	if d.DQVAR != nil {
		out = append(out, *d.DQVAR)
	}
	if d.Parameter != nil {
		out = append(out, *d.Parameter)
	}
	return out
}

// extractQVAR reads the QVAR value and each optional part that fits: the
// flag byte, then DQVAR, then the parameter.
func extractQVAR(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, qvarRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	rest := len(data) - off
	qvar, _ := numconv.LittleEndian.Int32(data, off)
	d := QVARData{QVAR: model.NewField("QVAR", "LSB", qvar)}
	n := qvarRecord
	if rest >= 5 {
		flag := model.NewField("Flag", "", data[off+4])
		d.Flag = &flag
		n = 5
	}
	if rest >= 9 {
		v, _ := numconv.LittleEndian.Int32(data, off+5)
		dq := model.NewField("DQVAR", "LSB", v)
		d.DQVAR = &dq
		n = 9
	}
	if rest >= 13 {
		v, _ := numconv.LittleEndian.Int32(data, off+9)
		p := model.NewField("Parameter", "", v)
		d.Parameter = &p
		n = 13
	}
	return newUpdate(f, ts, data, off, n, d), nil
}

// FitnessActivity is an exercise recognized by the board.
type FitnessActivity uint8

const (
	FitnessNoActivity FitnessActivity = 0x00
	FitnessBicepCurl  FitnessActivity = 0x01
	FitnessSquat      FitnessActivity = 0x02
	FitnessPushUp     FitnessActivity = 0x03
	FitnessError      FitnessActivity = 0xFF
)

func fitnessActivityFromByte(b byte) FitnessActivity {
	if b > byte(FitnessPushUp) {
		return FitnessError
	}
	return FitnessActivity(b)
}

// String returns the activity name.
func (a FitnessActivity) String() string {
	switch a {
	case FitnessNoActivity:
		return "NoActivity"
	case FitnessBicepCurl:
		return "BicepCurl"
	case FitnessSquat:
		return "Squat"
	case FitnessPushUp:
		return "PushUp"
	default:
		return "Error"
	}
}

// FitnessActivityData is the exercise and its repetition count.
type FitnessActivityData struct {
	Activity model.Field[FitnessActivity]
	Count    model.Field[uint16]
}

func (d FitnessActivityData) Fields() []model.AnyField { return []model.AnyField{d.Activity, d.Count} }

func extractFitnessActivity(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, fitnessActivityRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	count, _ := numconv.LittleEndian.UInt16(data, off+1)
	d := FitnessActivityData{
		Activity: model.NewField("Activity", "", fitnessActivityFromByte(data[off])),
		Count:    model.NewField("ActivityCounter", "", count),
	}
	return newUpdate(f, ts, data, off, fitnessActivityRecord, d), nil
}

func packFitnessActivity(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(EnableFitnessActivity)
	if !ok || c.Activity > FitnessPushUp {
		return nil, false
	}
	return f.request(byte(c.Activity)), true
}

// ToFMultiObjectData holds the distance of every object in view and, when
// the firmware reports it, the number of people present.
type ToFMultiObjectData struct {
	Objects   model.Field[uint8]
	Distances []model.Field[uint16]
	Presence  model.Field[uint8]
}

func (d ToFMultiObjectData) Fields() []model.AnyField {
	out := make([]model.AnyField, 0, len(d.Distances)+2)
	out = append(out, d.Objects)
	for _, f := range d.Distances {
		out = append(out, f)
	}
	return append(out, d.Presence)
}

// extractToFMultiObject reads one uint16 distance per object. A trailing
// odd byte is the presence count.
func extractToFMultiObject(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	rest := len(data) - off
	count := rest / 2
	d := ToFMultiObjectData{
		Objects:   model.NewField("objects", "", uint8(count)),
		Distances: make([]model.Field[uint16], count),
	}
	for i := range count {
		v, _ := numconv.LittleEndian.UInt16(data, off+2*i)
		d.Distances[i] = model.NewField(fmt.Sprintf("Obj_%d", i), "mm", v).WithRange(0, 4000)
	}
	var presence uint8
	if rest%2 == 1 {
		presence = data[off+2*count]
	}
	d.Presence = model.NewField("presences", "", presence)
	return newUpdate(f, ts, data, off, rest, d), nil
}

// ToF presence command ids.
const (
	commandToFPresenceDisable = 0x00
	commandToFPresenceEnable  = 0x01
)

func packToFMultiObject(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(EnablePresenceRecognition)
	if !ok {
		return nil, false
	}
	if c.Enable {
		return f.request(commandToFPresenceEnable), true
	}
	return f.request(commandToFPresenceDisable), true
}

// RegistersData holds the output registers of a sensor's embedded
// processing (machine learning core, finite state machine, ISPU) followed
// by its status pages.
type RegistersData struct {
	Registers []model.Field[uint8]
	Status    []model.Field[uint8]
}

func (d RegistersData) Fields() []model.AnyField {
	out := make([]model.AnyField, 0, len(d.Registers)+len(d.Status))
	for _, f := range d.Registers {
		out = append(out, f)
	}
	for _, f := range d.Status {
		out = append(out, f)
	}
	return out
}

// maxRegistersRecord is the largest register dump: 16 registers and two
// status pages.
const maxRegistersRecord = 18

func extractRegisters(regName string) extractFunc {
	return func(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
		if err := numconv.Require(data, off, 1); err != nil {
			return model.AnyUpdate{}, err
		}
		n := len(data) - off
		if n > maxRegistersRecord {
			return model.AnyUpdate{}, fmt.Errorf("%w: %d register bytes", ErrInvalidPayload, n)
		}
		pages := 1
		if n > 9 {
			pages = 2
		}
		regs := n - pages
		d := RegistersData{
			Registers: make([]model.Field[uint8], regs),
			Status:    make([]model.Field[uint8], pages),
		}
		for i := range regs {
			d.Registers[i] = model.NewField(fmt.Sprintf("%s_%d", regName, i), "", data[off+i])
		}
		for i := range pages {
			d.Status[i] = model.NewField(fmt.Sprintf("Status_%d", i), "", data[off+regs+i])
		}
		return newUpdate(f, ts, data, off, n, d), nil
	}
}
