package mailer

import (
	"testing"

	"github.com/asaskevich/EventBus"

	"github.com/Alex-Easy/diploma-try-2/config"
)

type fakeSettings struct {
	values map[string]bool
}

func (f *fakeSettings) GetSettingsBoolValue(category, key string) bool {
	return f.values[category+"."+key]
}

func TestEnabled(t *testing.T) {
	cases := []struct {
		name    string
		cfgFlag bool
		setting bool
		want    bool
	}{
		{"both off", false, false, false},
		{"config on", true, false, true},
		{"setting on", false, true, true},
		{"both on", true, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := New(
				config.SmtpConfig{Enabled: tc.cfgFlag},
				&fakeSettings{values: map[string]bool{"smtp.enabled": tc.setting}},
			)
			if got := m.enabled(); got != tc.want {
				t.Errorf("enabled() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEnabledWithoutSettings(t *testing.T) {
	m := New(config.SmtpConfig{}, nil)
	if m.enabled() {
		t.Error("mailer must be disabled without config flag and settings")
	}
}

func TestSubscribeAndPublish(t *testing.T) {
	m := New(config.SmtpConfig{}, &fakeSettings{values: map[string]bool{}})
	bus := EventBus.New()
	if err := m.Subscribe(bus); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// Disabled delivery: the handlers log and return without dialing out.
	bus.Publish(TopicUserRegistered, "buyer@example.com", "token-1")
	bus.Publish(TopicUserPasswordReset, "buyer@example.com", "token-2")
	bus.Publish(TopicOrderCreated, "buyer@example.com", int64(42))
	bus.WaitAsync()
}
