// Package led drives the connection-status LED through a PWM channel.
package led

// DutyCycle is the LED on-time in percent.
type DutyCycle uint8

const (
	// DutyOff keeps the LED dark.
	DutyOff DutyCycle = 0

	// DutyBlinking toggles the LED at the blink frequency.
	DutyBlinking DutyCycle = 50

	// DutyOn keeps the LED lit.
	DutyOn DutyCycle = 100
)

// BlinkFrequencyHz is the PWM frequency used for all duty cycles. At 50%
// duty this reads as a visible blink.
const BlinkFrequencyHz = 4

// An Indicator is a status LED with a settable blink rate.
type Indicator interface {
	// Stop turns the output off before a rate change.
	Stop() error

	// SetBlinkRate programs the duty cycle without starting the output.
	SetBlinkRate(d DutyCycle) error

	// Start resumes the output at the programmed rate.
	Start() error
}

// PWM is one hardware PWM channel.
type PWM interface {
	SetDutyCycle(percent uint8, freqHz uint32) error
	Start() error
	Stop() error
}

// PWMIndicator adapts a PWM channel to the Indicator interface.
type PWMIndicator struct {
	pwm PWM
}

// NewPWMIndicator returns an indicator over the given channel.
func NewPWMIndicator(pwm PWM) *PWMIndicator {
	return &PWMIndicator{pwm: pwm}
}

func (i *PWMIndicator) Stop() error { return i.pwm.Stop() }

func (i *PWMIndicator) SetBlinkRate(d DutyCycle) error {
	return i.pwm.SetDutyCycle(uint8(d), BlinkFrequencyHz)
}

func (i *PWMIndicator) Start() error { return i.pwm.Start() }
