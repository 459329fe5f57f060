package features

import (
	"encoding/json"
	"fmt"

	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/numconv"
)

// NEAIState is the state of a NanoEdge AI library.
type NEAIState uint8

const (
	NEAIStateOk                  NEAIState = 0x00
	NEAIStateInitNotCalled       NEAIState = 0x7B
	NEAIStateBoardError          NEAIState = 0x7C
	NEAIStateKnowledgeError      NEAIState = 0x7D
	NEAIStateNotEnoughLearning   NEAIState = 0x7E
	NEAIStateMinimalLearningDone NEAIState = 0x7F
	NEAIStateUnknownError        NEAIState = 0x80
	NEAIStateNull                NEAIState = 0xFF
)

func neaiStateFromByte(b byte) NEAIState {
	switch s := NEAIState(b); s {
	case NEAIStateOk, NEAIStateInitNotCalled, NEAIStateBoardError, NEAIStateKnowledgeError,
		NEAIStateNotEnoughLearning, NEAIStateMinimalLearningDone, NEAIStateUnknownError:
		return s
	default:
		return NEAIStateNull
	}
}

// String returns the state name.
func (s NEAIState) String() string {
	switch s {
	case NEAIStateOk:
		return "Ok"
	case NEAIStateInitNotCalled:
		return "Init_Not_Called"
	case NEAIStateBoardError:
		return "Board_Error"
	case NEAIStateKnowledgeError:
		return "Knowledge_Error"
	case NEAIStateNotEnoughLearning:
		return "Not_Enough_Learning"
	case NEAIStateMinimalLearningDone:
		return "Minimal_Learning_done"
	case NEAIStateUnknownError:
		return "Unknown_Error"
	default:
		return "Null"
	}
}

// NEAIPhase is what a NanoEdge AI library is doing. The anomaly detection,
// classification and extrapolation libraries each use a subset.
type NEAIPhase uint8

const (
	NEAIPhaseIdle NEAIPhase = iota
	NEAIPhaseLearning
	NEAIPhaseDetection
	NEAIPhaseIdleTrained
	NEAIPhaseBusy
	NEAIPhaseClassification
	NEAIPhaseExtrapolation
	NEAIPhaseNull
)

var neaiPhaseNames = [...]string{"Idle", "Learning", "Detection", "Idle_Trained", "Busy", "Classification", "Extrapolation", "Null"}

// String returns the phase name.
func (p NEAIPhase) String() string {
	if int(p) < len(neaiPhaseNames) {
		return neaiPhaseNames[p]
	}
	return "Null"
}

func anomalyPhaseFromByte(b byte) NEAIPhase {
	if b > byte(NEAIPhaseBusy) {
		return NEAIPhaseNull
	}
	return NEAIPhase(b)
}

// classificationPhaseFromByte decodes the phase of the classification and
// extrapolation libraries, where 1 is the running phase of the library.
func classificationPhaseFromByte(b byte, running NEAIPhase) NEAIPhase {
	switch b {
	case 0x00:
		return NEAIPhaseIdle
	case 0x01:
		return running
	case 0x02:
		return NEAIPhaseBusy
	default:
		return NEAIPhaseNull
	}
}

// AnomalyStatus is the verdict of the anomaly detection library.
type AnomalyStatus uint8

const (
	AnomalyNormal AnomalyStatus = 0x00
	AnomalyFound  AnomalyStatus = 0x01
	AnomalyNull   AnomalyStatus = 0xFF
)

// String returns the status name.
func (s AnomalyStatus) String() string {
	switch s {
	case AnomalyNormal:
		return "Normal"
	case AnomalyFound:
		return "Anomaly"
	default:
		return "Null"
	}
}

const neaiAnomalyRecord = 7

// NEAIAnomalyData is the anomaly detection library output.
type NEAIAnomalyData struct {
	Phase      model.Field[NEAIPhase]
	State      model.Field[NEAIState]
	Progress   model.Field[uint8]
	Status     model.Field[AnomalyStatus]
	Similarity model.Field[uint8]
}

func (d NEAIAnomalyData) Fields() []model.AnyField {
	return []model.AnyField{d.Phase, d.State, d.Progress, d.Status, d.Similarity}
}

// extractNEAIAnomaly skips the two reserved leading bytes of the record.
func extractNEAIAnomaly(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, neaiAnomalyRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	status := AnomalyNull
	if s := data[off+5]; s <= byte(AnomalyFound) {
		status = AnomalyStatus(s)
	}
	d := NEAIAnomalyData{
		Phase:      model.NewField("Phase", "", anomalyPhaseFromByte(data[off+2])),
		State:      model.NewField("State", "", neaiStateFromByte(data[off+3])),
		Progress:   model.NewField("Phase Progress", "%", data[off+4]).WithRange(0, 100),
		Status:     model.NewField("Status", "", status),
		Similarity: model.NewField("Similarity", "", data[off+6]).WithRange(0, 100),
	}
	return newUpdate(f, ts, data, off, neaiAnomalyRecord, d), nil
}

// NEAI command ids.
const (
	commandNEAIStop           = 0x00
	commandNEAILearning       = 0x01
	commandNEAIDetection      = 0x02
	commandNEAIResetKnowledge = 0xFF

	commandNEAIStartClassification = 0x01
)

func packNEAIAnomaly(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(RunNEAI)
	if !ok {
		return nil, false
	}
	switch c.Action {
	case NEAIStop:
		return f.request(commandNEAIStop), true
	case NEAILearn:
		return f.request(commandNEAILearning), true
	case NEAIDetect:
		return f.request(commandNEAIDetection), true
	case NEAIResetKnowledge:
		return f.request(commandNEAIResetKnowledge), true
	default:
		return nil, false
	}
}

// NEAIClassMode tells one class from multi class models.
type NEAIClassMode uint8

const (
	NEAIModeNull     NEAIClassMode = 0x00
	NEAIModeOneClass NEAIClassMode = 0x01
	NEAIModeNClass   NEAIClassMode = 0x02
)

// String returns the mode name.
func (m NEAIClassMode) String() string {
	switch m {
	case NEAIModeOneClass:
		return "One_Class"
	case NEAIModeNClass:
		return "N_Class"
	default:
		return "Null"
	}
}

const (
	neaiClassIdleRecord   = 4
	neaiClassCommonRecord = 6
	neaiMaxClasses        = 8
)

// NEAIClassificationData is the classification library output. State,
// MajorClass and Probabilities are empty while the library is idle.
type NEAIClassificationData struct {
	Mode          model.Field[NEAIClassMode]
	Phase         model.Field[NEAIPhase]
	State         *model.Field[NEAIState]
	Classes       model.Field[uint8]
	MajorClass    model.Field[uint8]
	Probabilities []model.Field[uint8]
}

func (d NEAIClassificationData) Fields() []model.AnyField {
	out := []model.AnyField{d.Mode, d.Phase}
	if d.State != nil {
		out = append(out, *d.State)
	}
	out = append(out, d.Classes, d.MajorClass)
	for _, p := range d.Probabilities {
		out = append(out, p)
	}
	return out
}

// extractNEAIClassification reads a 4-byte idle record, or a 6-byte header
// with the state and the most probable class followed, for N class models,
// by one probability per class.
func extractNEAIClassification(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	if err := numconv.Require(data, off, neaiClassIdleRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	rest := len(data) - off
	mode := NEAIClassMode(data[off+2] & 0x0F)
	if mode > NEAIModeNClass {
		mode = NEAIModeNull
	}
	d := NEAIClassificationData{
		Mode:  model.NewField("Mode", "", mode),
		Phase: model.NewField("Phase", "", classificationPhaseFromByte(data[off+3]&0x0F, NEAIPhaseClassification)),
	}
	if rest == neaiClassIdleRecord {
		return newUpdate(f, ts, data, off, neaiClassIdleRecord, d), nil
	}
	if err := numconv.Require(data, off, neaiClassCommonRecord); err != nil {
		return model.AnyUpdate{}, err
	}
	state := model.NewField("State", "", neaiStateFromByte(data[off+4]))
	d.State = &state
	d.Classes = model.NewField("ClassesNumber", "", uint8(1))

	n := neaiClassCommonRecord
	switch mode {
	case NEAIModeOneClass:
		d.MajorClass = model.NewField("Class Major Prob", "", uint8(1))
		d.Probabilities = []model.Field[uint8]{
			model.NewField("Class 1 Probability", "%", data[off+5]).WithRange(0, 100),
		}
	case NEAIModeNClass:
		d.MajorClass = model.NewField("Class Major Prob", "", data[off+5])
		classes := rest - neaiClassCommonRecord
		if classes >= neaiMaxClasses {
			return model.AnyUpdate{}, fmt.Errorf("%w: %d classes", ErrInvalidPayload, classes)
		}
		if classes > 0 {
			d.Classes = model.NewField("ClassesNumber", "", uint8(classes))
			d.Probabilities = make([]model.Field[uint8], classes)
			for i := range classes {
				name := fmt.Sprintf("Class %d Probability", i)
				d.Probabilities[i] = model.NewField(name, "%", data[off+neaiClassCommonRecord+i]).WithRange(0, 100)
			}
			n += classes
		}
	default:
		return model.AnyUpdate{}, fmt.Errorf("%w: classification mode 0x%02X", ErrInvalidPayload, data[off+2])
	}
	return newUpdate(f, ts, data, off, n, d), nil
}

func packNEAIClassification(f *Feature, cmd Command) ([]byte, bool) {
	c, ok := cmd.(RunNEAI)
	if !ok {
		return nil, false
	}
	switch c.Action {
	case NEAIStop:
		return f.request(commandNEAIStop), true
	case NEAIClassify:
		return f.request(commandNEAIStartClassification), true
	default:
		return nil, false
	}
}

// NEAIExtrapolation is the JSON report of the extrapolation library.
type NEAIExtrapolation struct {
	Phase  uint8    `json:"phase"`
	State  *uint8   `json:"state,omitempty"`
	Target *float32 `json:"target,omitempty"`
	Unit   string   `json:"unit,omitempty"`
	Stub   *bool    `json:"stub,omitempty"`
}

// NEAIExtrapolationData is the extrapolation library output. Report is nil
// when the text is not a valid report.
type NEAIExtrapolationData struct {
	Text   model.Field[string]
	Phase  model.Field[NEAIPhase]
	Report *NEAIExtrapolation
}

func (d NEAIExtrapolationData) Fields() []model.AnyField {
	return []model.AnyField{d.Text, d.Phase}
}

// extractNEAIExtrapolation reads a NUL terminated JSON report that fills
// the notification.
func extractNEAIExtrapolation(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error) {
	text := jsonText(data[off:])
	d := NEAIExtrapolationData{
		Text:  model.NewField("Extrapolation", "", string(text)),
		Phase: model.NewField("Phase", "", NEAIPhaseNull),
	}
	var report NEAIExtrapolation
	if err := json.Unmarshal(text, &report); err == nil {
		d.Report = &report
		d.Phase = model.NewField("Phase", "", classificationPhaseFromByte(report.Phase, NEAIPhaseExtrapolation))
	}
	return newUpdate(f, ts, data, off, len(data)-off, d), nil
}
