// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning constants (§6, §9). These are compile-time defaults; StepConf
// carries the per-world, per-step versions a host can still override.
const (
	LinearSlop      = 0.005
	AngularSlop     = 2.0 / 180.0 * 3.14159265358979323846
	AabbExtension   = LinearSlop * 20
	AabbMultiplier  = 4.0
	MaxTranslation  = 2.0
	MaxRotation     = 0.5 * 3.14159265358979323846
	MaxLinearCorrection  = 0.2
	MaxAngularCorrection = 8.0 / 180.0 * 3.14159265358979323846
	VelocityThreshold    = 1.0
	LinearSleepTolerance  = 0.01
	AngularSleepTolerance = 2.0 / 180.0 * 3.14159265358979323846
	TimeToSleep           = 0.5
	Baumgarte             = 0.2
	ToiBaumgarte          = 0.75
	MaxSubSteps           = 8
	MaxToiContactsPerIsland = 32
)

// StepConf holds the tunables §6's configuration table names. A zero value
// is not meaningful; use DefaultStepConf.
type StepConf struct {
	DeltaTime float64 `yaml:"delta_time"`

	VelocityIterations int `yaml:"reg_velocity_iters"`
	PositionIterations int `yaml:"reg_position_iters"`
	ToiVelocityIterations int `yaml:"toi_velocity_iters"`
	ToiPositionIterations int `yaml:"toi_position_iters"`

	MaxToiIters     int `yaml:"max_toi_iters"`
	MaxRootIters    int `yaml:"max_root_iters"`
	MaxDistanceIters int `yaml:"max_distance_iters"`
	MaxSubSteps     int `yaml:"max_substeps"`

	LinearSlop  float64 `yaml:"linear_slop"`
	AngularSlop float64 `yaml:"angular_slop"`
	AabbExtension float64 `yaml:"aabb_extension"`

	VelocityThreshold float64 `yaml:"velocity_threshold"`

	MaxLinearCorrection  float64 `yaml:"max_linear_correction"`
	MaxAngularCorrection float64 `yaml:"max_angular_correction"`
	MaxTranslation       float64 `yaml:"max_translation"`
	MaxRotation          float64 `yaml:"max_rotation"`

	Baumgarte    float64 `yaml:"baumgarte"`
	ToiBaumgarte float64 `yaml:"toi_baumgarte"`

	AllowSleep bool `yaml:"allow_sleep"`
	LinearSleepTolerance  float64 `yaml:"linear_sleep_tolerance"`
	AngularSleepTolerance float64 `yaml:"angular_sleep_tolerance"`
	MinStillTimeToSleep   float64 `yaml:"min_still_time_to_sleep"`

	DoWarmStart  bool `yaml:"do_warm_start"`
	DoToi        bool `yaml:"do_toi"`
	DoBlockSolve bool `yaml:"do_blocksolve"`

	Gravity Vec2Config `yaml:"gravity"`

	AutoClearForces bool `yaml:"auto_clear_forces"`
}

// Vec2Config is a YAML-friendly mirror of lin.Vec2 (mgl64.Vec2 has no
// struct tags of its own to decode into).
type Vec2Config struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// DefaultStepConf returns the defaults named throughout §4 and §6.
func DefaultStepConf() StepConf {
	return StepConf{
		DeltaTime:             1.0 / 60.0,
		VelocityIterations:    8,
		PositionIterations:    3,
		ToiVelocityIterations: 8,
		ToiPositionIterations: 20,
		MaxToiIters:           20,
		MaxRootIters:          30,
		MaxDistanceIters:      20,
		MaxSubSteps:           MaxSubSteps,
		LinearSlop:            LinearSlop,
		AngularSlop:           AngularSlop,
		AabbExtension:         AabbExtension,
		VelocityThreshold:     VelocityThreshold,
		MaxLinearCorrection:   MaxLinearCorrection,
		MaxAngularCorrection:  MaxAngularCorrection,
		MaxTranslation:        MaxTranslation,
		MaxRotation:           MaxRotation,
		Baumgarte:             Baumgarte,
		ToiBaumgarte:          ToiBaumgarte,
		AllowSleep:            true,
		LinearSleepTolerance:  LinearSleepTolerance,
		AngularSleepTolerance: AngularSleepTolerance,
		MinStillTimeToSleep:   TimeToSleep,
		DoWarmStart:           true,
		DoToi:                 true,
		DoBlockSolve:          true,
		Gravity:               Vec2Config{0, -10},
		AutoClearForces:       true,
	}
}

// LoadStepConf reads a YAML document at path and overlays it onto
// DefaultStepConf, so a config file only needs to name the fields it wants
// to override.
func LoadStepConf(path string) (StepConf, error) {
	conf := DefaultStepConf()
	raw, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return conf, err
	}
	return conf, nil
}
