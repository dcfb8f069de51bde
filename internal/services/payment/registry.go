package payment

import (
	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

// RegistryEntry binds one payment method to its gateway and callback handler
type RegistryEntry struct {
	Method  domain.PaymentMethod
	Gateway ports.PaymentGateway
	Handler ports.CallbackHandler
}

// Registry maps payment methods to gateway implementations. It is populated
// once at startup and immutable afterwards; request handling only reads it.
type Registry struct {
	gateways map[domain.PaymentMethod]ports.PaymentGateway
	handlers map[domain.PaymentMethod]ports.CallbackHandler
	enabled  map[domain.PaymentMethod]bool
}

// NewRegistry builds a registry from the deployment's enabled methods and the
// gateway entries registered at construction time
func NewRegistry(enabledMethods []domain.PaymentMethod, entries ...RegistryEntry) *Registry {
	r := &Registry{
		gateways: make(map[domain.PaymentMethod]ports.PaymentGateway, len(entries)),
		handlers: make(map[domain.PaymentMethod]ports.CallbackHandler, len(entries)),
		enabled:  make(map[domain.PaymentMethod]bool, len(enabledMethods)),
	}
	for _, m := range enabledMethods {
		r.enabled[m] = true
	}
	for _, e := range entries {
		if e.Gateway != nil {
			r.gateways[e.Method] = e.Gateway
		}
		if e.Handler != nil {
			r.handlers[e.Method] = e.Handler
		}
	}
	return r
}

// Gateway returns the gateway registered for the method
func (r *Registry) Gateway(method domain.PaymentMethod) (ports.PaymentGateway, error) {
	gw, ok := r.gateways[method]
	if !ok {
		return nil, domain.ErrMethodUnsupported.WithDetail("method", string(method))
	}
	return gw, nil
}

// CallbackHandler returns the callback handler registered for the method
func (r *Registry) CallbackHandler(method domain.PaymentMethod) (ports.CallbackHandler, error) {
	h, ok := r.handlers[method]
	if !ok {
		return nil, domain.ErrCallbackHandlerMissing.WithDetail("method", string(method))
	}
	return h, nil
}

// AvailableMethods returns the methods that are both enabled in this
// deployment and backed by a registered gateway. Order follows
// domain.AllPaymentMethods for stable output.
func (r *Registry) AvailableMethods() []domain.PaymentMethod {
	methods := make([]domain.PaymentMethod, 0, len(r.gateways))
	for _, m := range domain.AllPaymentMethods {
		if r.enabled[m] && r.gateways[m] != nil {
			methods = append(methods, m)
		}
	}
	return methods
}
