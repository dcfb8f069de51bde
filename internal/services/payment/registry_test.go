package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/testutil/mocks"
)

func TestRegistry_Gateway(t *testing.T) {
	gw := &mocks.Gateway{GatewayName: "fake", Method: domain.PaymentMethodFake}
	r := NewRegistry(
		[]domain.PaymentMethod{domain.PaymentMethodFake},
		RegistryEntry{Method: domain.PaymentMethodFake, Gateway: gw, Handler: &mocks.CallbackHandler{}},
	)

	t.Run("registered_method_resolves", func(t *testing.T) {
		got, err := r.Gateway(domain.PaymentMethodFake)
		require.NoError(t, err)
		assert.Equal(t, "fake", got.Name())
	})

	t.Run("unregistered_method_is_unsupported", func(t *testing.T) {
		_, err := r.Gateway(domain.PaymentMethodPayPal)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeMethodUnsupported, domain.GetErrorCode(err))
	})
}

func TestRegistry_CallbackHandler(t *testing.T) {
	t.Run("missing_handler_reported_distinctly", func(t *testing.T) {
		// Gateway registered without a callback handler: processing works but
		// callbacks for the method must surface CALLBACK_HANDLER_MISSING.
		r := NewRegistry(
			[]domain.PaymentMethod{domain.PaymentMethodPayPal},
			RegistryEntry{Method: domain.PaymentMethodPayPal, Gateway: &mocks.Gateway{Method: domain.PaymentMethodPayPal}},
		)

		_, err := r.Gateway(domain.PaymentMethodPayPal)
		require.NoError(t, err)

		_, err = r.CallbackHandler(domain.PaymentMethodPayPal)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeCallbackHandlerMissing, domain.GetErrorCode(err))
	})
}

func TestRegistry_AvailableMethods(t *testing.T) {
	fake := RegistryEntry{Method: domain.PaymentMethodFake, Gateway: &mocks.Gateway{Method: domain.PaymentMethodFake}}
	paypal := RegistryEntry{Method: domain.PaymentMethodPayPal, Gateway: &mocks.Gateway{Method: domain.PaymentMethodPayPal}}

	tests := []struct {
		name     string
		enabled  []domain.PaymentMethod
		entries  []RegistryEntry
		expected []domain.PaymentMethod
	}{
		{
			name:     "intersection_of_enabled_and_registered",
			enabled:  []domain.PaymentMethod{domain.PaymentMethodFake, domain.PaymentMethodCreditCard},
			entries:  []RegistryEntry{fake, paypal},
			expected: []domain.PaymentMethod{domain.PaymentMethodFake},
		},
		{
			name:     "enabled_without_gateway_excluded",
			enabled:  []domain.PaymentMethod{domain.PaymentMethodCreditCard},
			entries:  []RegistryEntry{fake},
			expected: []domain.PaymentMethod{},
		},
		{
			name:     "stable_order_follows_known_methods",
			enabled:  []domain.PaymentMethod{domain.PaymentMethodPayPal, domain.PaymentMethodFake},
			entries:  []RegistryEntry{paypal, fake},
			expected: []domain.PaymentMethod{domain.PaymentMethodFake, domain.PaymentMethodPayPal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(tt.enabled, tt.entries...)
			assert.Equal(t, tt.expected, r.AvailableMethods())
		})
	}
}
