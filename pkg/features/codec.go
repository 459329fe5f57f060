package features

import (
	"github.com/bluest-sdk/bluest-go/pkg/model"
	"github.com/bluest-sdk/bluest-go/pkg/transport"
)

type (
	extractFunc func(f *Feature, ts uint64, data []byte, off int) (model.AnyUpdate, error)
	packFunc    func(f *Feature, cmd Command) ([]byte, bool)
	parseFunc   func(f *Feature, resp CommandResponse) (Response, bool)
)

// codec is the behavior shared by every feature of one kind.
type codec struct {
	name        string
	noTimestamp bool
	noNotify    bool
	// directWrite routes commands of a standard feature to its own
	// characteristic instead of the config characteristic.
	directWrite bool
	// stream kinds reassemble frames of scheme before decoding.
	stream  bool
	scheme  transport.Scheme
	raw     bool
	extract extractFunc
	pack    packFunc
	parse   parseFunc
}

var codecs map[Kind]codec

func init() {
	codecs = map[Kind]codec{
		KindTemperature:        {name: "Temperature", extract: extractTemperature},
		KindPressure:           {name: "Pressure", extract: extractPressure},
		KindHumidity:           {name: "Humidity", extract: extractHumidity},
		KindLuminosity:         {name: "Luminosity", extract: extractLuminosity},
		KindCOSensor:           {name: "CO Sensor", extract: extractCOSensor},
		KindProximity:          {name: "Proximity", extract: extractProximity},
		KindMicLevel:           {name: "Microphone Level", extract: extractMicLevel},
		KindDirectionOfArrival: {name: "Direction of Arrival", extract: extractDirectionOfArrival, pack: packDirectionOfArrival},

		KindAcceleration:       {name: "Acceleration", extract: extractAcceleration},
		KindGyroscope:          {name: "Gyroscope", extract: extractGyroscope},
		KindMagnetometer:       {name: "Magnetometer", extract: extractMagnetometer},
		KindPedometer:          {name: "Pedometer", extract: extractPedometer},
		KindEventCounter:       {name: "Event Counter", extract: extractEventCounter},
		KindFreeFall:           {name: "Free Fall", extract: extractFreeFall},
		KindMemsGesture:        {name: "MEMS Gesture", extract: extractMemsGesture},
		KindMemsNorm:           {name: "Mems Norm", extract: extractMemsNorm},
		KindMotionIntensity:    {name: "Vertical Context Intensity", extract: extractMotionIntensity},
		KindCompass:            {name: "Compass", extract: extractCompass, pack: packCalibration, parse: parseCalibration},
		KindActivity:           {name: "Activity Recognition", extract: extractActivity},
		KindCarryPosition:      {name: "Carry Position", extract: extractCarryPosition},
		KindProximityGesture:   {name: "Proximity Gesture", extract: extractProximityGesture},
		KindAccelerationEvent:  {name: "Acceleration Event", extract: extractAccelerationEvent, pack: packAccelerationEvent, parse: parseAccelerationEvent},
		KindSensorFusion:       {name: "MemsSensorFusion", extract: extractSensorFusion, pack: packCalibration, parse: parseCalibration},
		KindSensorFusionCompat: {name: "MemsSensorFusionCompat", extract: extractSensorFusionCompat, pack: packCalibration, parse: parseCalibration},

		KindBattery: {name: "Battery", extract: extractBattery, pack: packBattery, parse: parseBattery},
		KindSwitch:  {name: "Switch", extract: extractSwitch, pack: packSwitch, parse: parseSwitch},

		KindRemoteTemperature: {name: "REMOTE TEMPERATURE", extract: extractRemoteTemperature},
		KindRemoteHumidity:    {name: "Remote Humidity", extract: extractRemoteHumidity},
		KindRemotePressure:    {name: "Remote Pressure", extract: extractRemotePressure},
		KindRemoteSwitch:      {name: "Remote switch", extract: extractRemoteSwitch, pack: packRemoteSwitch},

		KindHeartRate:          {name: "Heart Rate", noTimestamp: true, extract: extractHeartRate},
		KindBodySensorLocation: {name: "Body Sensor Location", noTimestamp: true, extract: extractBodySensorLocation},

		KindSwitchStatus:        {name: "SwitchInfo", noTimestamp: true, extract: extractSwitchStatus},
		KindNetworkStatus:       {name: "Network Status", noTimestamp: true, extract: extractNetworkStatus},
		KindControlLedAndReboot: {name: "ControlLedAndRadioProtocolReboot", noTimestamp: true, noNotify: true, extract: extractEmpty, pack: packControlLed},

		KindOTAReboot:                {name: "OTAReboot", noTimestamp: true, noNotify: true, extract: extractEmpty, pack: packOTAReboot},
		KindOTAControl:               {name: "OTAControlFeature", noTimestamp: true, noNotify: true, extract: extractEmpty, pack: packOTAControl},
		KindOTAWillReboot:            {name: "OTAWillReboot", noTimestamp: true, extract: extractOTAWillReboot},
		KindOTAFileUpload:            {name: "OTAFileUpload", noTimestamp: true, noNotify: true, extract: extractEmpty, pack: packOTAFileUpload},
		KindImage:                    {name: "ImageFeature", noTimestamp: true, extract: extractImage},
		KindNewImage:                 {name: "NewImage", noTimestamp: true, extract: extractNewImage, pack: packNewImage},
		KindNewImageTUContent:        {name: "NewImageTUContentFeature", noTimestamp: true, noNotify: true, extract: extractEmpty, pack: packNewImageTUContent},
		KindExpectedImageTUSeqNumber: {name: "ExpectedImageTUSeqNumberFeature", noTimestamp: true, extract: extractExpectedImageTUSeqNumber},

		KindBinaryContent:   {name: "Binary Content", noTimestamp: true, stream: true, scheme: transport.SchemeSTL2Notify, extract: extractBinaryContent, pack: packBinaryContent},
		KindJSONNFC:         {name: "JsonNFC", noTimestamp: true, stream: true, scheme: transport.SchemeSTL2Notify, extract: extractJSONNFC, pack: packJSONNFC},
		KindHSDataLogConfig: {name: "HSDataLogConfig", noTimestamp: true, stream: true, scheme: transport.SchemeSTL2Notify, extract: extractHSDataLogConfig, pack: packHSDataLog},

		KindGeneralPurpose: {name: "GeneralPurpose", extract: extractGeneralPurpose},

		KindAudioADPCM:          {name: "AudioADPCMFeature", noTimestamp: true, extract: extractAudioADPCM},
		KindAudioADPCMSync:      {name: "AudioADPCMSyncFeature", noTimestamp: true, extract: extractAudioADPCMSync},
		KindAudioOpus:           {name: "AudioOpusFeature", noTimestamp: true, noNotify: true, stream: true, scheme: transport.SchemeOpus, extract: extractAudioOpus},
		KindBeamForming:         {name: "Beam Forming", extract: extractBeamForming, pack: packBeamForming},
		KindAudioClassification: {name: "Audio Classification", extract: extractAudioClassification},

		KindStepperMotor: {name: "Stepper Motor", noTimestamp: true, noNotify: true, directWrite: true, extract: extractStepperMotor, pack: packStepperMotor},
		KindSDLogging:    {name: "SDLogging", noNotify: true, directWrite: true, extract: extractSDLogging, pack: packSDLogging},
		KindEulerAngle:   {name: "Euler Angle", extract: extractEulerAngle, pack: packCalibration, parse: parseCalibration},

		KindMotorTimeParameter:           {name: "MotorTimeParameter", extract: extractMotorTimeParameter},
		KindPredictiveSpeedStatus:        {name: "PredictiveSpeedStatus", extract: extractPredictiveSpeedStatus},
		KindPredictiveAccelerationStatus: {name: "PredictiveAccelerationStatus", extract: extractPredictiveAccelerationStatus},
		KindPredictiveFrequencyStatus:    {name: "PredictiveFrequencyStatus", extract: extractPredictiveFrequencyStatus},

		KindFitnessActivity:     {name: "Fitness Activity", extract: extractFitnessActivity, pack: packFitnessActivity},
		KindMachineLearningCore: {name: "Machine Learning Core", extract: extractRegisters("MLC")},
		KindFiniteStateMachine:  {name: "Finite State Machine", extract: extractRegisters("FSM")},
		KindSTRedL:              {name: "STRed-ISPU", extract: extractRegisters("Reg")},
		KindToFMultiObject:      {name: "ToF Multi Object", extract: extractToFMultiObject, pack: packToFMultiObject},
		KindColorAmbientLight:   {name: "Color Ambient Light", extract: extractColorAmbientLight},
		KindQVAR:                {name: "Electric Charge Variation", extract: extractQVAR},
		KindGNSS:                {name: "Global Navigation Satellite System", extract: extractGNSS},

		KindNEAIAnomalyDetection: {name: "NEAI AD", extract: extractNEAIAnomaly, pack: packNEAIAnomaly},
		KindNEAIClassification:   {name: "NEAI Classification", extract: extractNEAIClassification, pack: packNEAIClassification},
		KindNEAIExtrapolation:    {name: "NEAI Extrapolation", extract: extractNEAIExtrapolation},

		KindAudioOpusConf:     placeholder("AudioOpusConfFeature"),
		KindAiLogging:         placeholder("AiLogging"),
		KindFFTAmplitude:      placeholder("FFT Amplitude Feature"),
		KindMotionAlgorithm:   placeholder("Motion Algorithm"),
		KindExtConfiguration:  placeholder("ExtConfiguration"),
		KindPnPL:              placeholder("PnPLike"),
		KindPiano:             placeholder("Simple Piano"),
		KindGestureNavigation: placeholder("Navigation"),
		KindRawControlled:     placeholder("Raw Controlled"),
		KindISPUControl:       placeholder("ISPU Control"),
		KindMedicalSignal16:   placeholder("Medical Signal 16"),
		KindMedicalSignal24:   placeholder("Medical Signal 24"),
		KindNavigationControl: placeholder("Navigation Control"),
		KindSceneDescription:  placeholder("Scene Description"),
	}
}

// placeholder is a kind whose payload is passed through undecoded. Every
// placeholder kind owns its characteristic, so reading the rest of the
// notification never hides another feature's record.
func placeholder(name string) codec {
	return codec{name: name, raw: true, extract: extractRaw}
}
