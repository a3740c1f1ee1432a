package features

// FeatureVector holds the per-frame spectral and temporal descriptors.
type FeatureVector struct {
	Centroid         float64   `json:"centroid"`           // Hz
	Rolloff          float64   `json:"rolloff"`            // Hz
	Bandwidth        float64   `json:"bandwidth"`          // Hz
	ZeroCrossingRate float64   `json:"zero_crossing_rate"` // normalized 0-1
	RMSEnergy        float64   `json:"rms_energy"`
	MFCC             []float64 `json:"mfcc"`
}

// FeatureSet aggregates the per-frame descriptors over the whole track.
// TempoBPM, Key, and Mode are stitched in by the engine once rhythm
// estimation has run; after that the value is complete and treated as
// immutable by every downstream consumer.
type FeatureSet struct {
	CentroidMean  float64 `json:"centroid_mean"`
	CentroidStd   float64 `json:"centroid_std"`
	RolloffMean   float64 `json:"rolloff_mean"`
	RolloffStd    float64 `json:"rolloff_std"`
	BandwidthMean float64 `json:"bandwidth_mean"`
	BandwidthStd  float64 `json:"bandwidth_std"`
	ZCRMean       float64 `json:"zcr_mean"`
	ZCRStd        float64 `json:"zcr_std"`
	EnergyMean    float64 `json:"energy_mean"`
	EnergyStd     float64 `json:"energy_std"`

	MFCCMean []float64 `json:"mfcc_mean"`
	MFCCStd  []float64 `json:"mfcc_std"`

	TempoBPM        float64 `json:"tempo_bpm"`
	Key             string  `json:"key"`
	Mode            string  `json:"mode"`
	DurationSeconds float64 `json:"duration_seconds"`
	LoudnessDB      float64 `json:"loudness_db"`
}
