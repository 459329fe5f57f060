package features

// Kind selects the decoding behavior of a feature.
type Kind uint16

const (
	KindUnknown Kind = iota

	// Environmental.
	KindTemperature
	KindPressure
	KindHumidity
	KindLuminosity
	KindCOSensor
	KindProximity
	KindMicLevel
	KindDirectionOfArrival

	// Motion.
	KindAcceleration
	KindGyroscope
	KindMagnetometer
	KindPedometer
	KindEventCounter
	KindFreeFall
	KindMemsGesture
	KindMemsNorm
	KindMotionIntensity
	KindCompass
	KindActivity
	KindCarryPosition
	KindProximityGesture
	KindAccelerationEvent
	KindSensorFusion
	KindSensorFusionCompat

	// Power and control.
	KindBattery
	KindSwitch

	// Relayed from a remote node.
	KindRemoteTemperature
	KindRemoteHumidity
	KindRemotePressure
	KindRemoteSwitch

	// Bluetooth SIG characteristics.
	KindHeartRate
	KindBodySensorLocation

	// STM32WB peer to peer.
	KindSwitchStatus
	KindNetworkStatus
	KindControlLedAndReboot

	// Firmware upgrade.
	KindOTAReboot
	KindOTAControl
	KindOTAWillReboot
	KindOTAFileUpload
	KindImage
	KindNewImage
	KindNewImageTUContent
	KindExpectedImageTUSeqNumber

	// Segmented streams.
	KindBinaryContent
	KindJSONNFC
	KindHSDataLogConfig

	KindGeneralPurpose

	// Audio, logging, predictive maintenance, AI and extended sensors.
	KindAudioADPCM
	KindAudioADPCMSync
	KindStepperMotor
	KindSDLogging
	KindBeamForming
	KindAudioOpus
	KindAudioOpusConf
	KindAudioClassification
	KindAiLogging
	KindFFTAmplitude
	KindMotorTimeParameter
	KindPredictiveSpeedStatus
	KindPredictiveAccelerationStatus
	KindPredictiveFrequencyStatus
	KindMotionAlgorithm
	KindEulerAngle
	KindFitnessActivity
	KindMachineLearningCore
	KindFiniteStateMachine
	KindSTRedL
	KindToFMultiObject
	KindExtConfiguration
	KindColorAmbientLight
	KindQVAR
	KindGNSS
	KindNEAIAnomalyDetection
	KindNEAIClassification
	KindNEAIExtrapolation
	KindPnPL
	KindPiano
	KindGestureNavigation
	KindRawControlled
	KindISPUControl
	KindMedicalSignal16
	KindMedicalSignal24
	KindNavigationControl
	KindSceneDescription
)

// String returns the firmware name of the kind.
func (k Kind) String() string {
	if c, ok := codecs[k]; ok {
		return c.name
	}
	return "Unknown"
}

// Placeholder reports whether the kind's payload is passed through undecoded.
func (k Kind) Placeholder() bool {
	return codecs[k].raw
}
