package service

import (
	"sync"

	"perplexacare/internal/domain"
)

// UserChange notifica un cambio del usuario activo. Login y signup
// traen el usuario nuevo; logout trae nil.
type UserChange struct {
	User *domain.User
}

// AuthState es el punto de suscripción explícito a cambios de sesión:
// registrar observador, recibir eventos current-user-changed, cancelar
// con la función devuelta. Reemplaza el callback del proveedor de
// identidad sin depender de ningún SDK concreto.
type AuthState struct {
	mu      sync.Mutex
	current *domain.User
	subs    map[int]chan UserChange
	nextID  int
}

func NewAuthState() *AuthState {
	return &AuthState{
		subs: make(map[int]chan UserChange),
	}
}

// Current devuelve el usuario activo, o nil si no hay sesión.
func (a *AuthState) Current() *domain.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Subscribe registra un observador. El estado vigente se entrega como
// primer evento. La función devuelta cancela la suscripción y cierra
// el canal.
func (a *AuthState) Subscribe() (<-chan UserChange, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	ch := make(chan UserChange, 8)
	a.subs[id] = ch
	ch <- UserChange{User: a.current}

	unsubscribe := func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if sub, ok := a.subs[id]; ok {
			delete(a.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// SetCurrent publica el usuario activo a todos los suscriptores.
// Un suscriptor que no drena su canal pierde eventos intermedios.
func (a *AuthState) SetCurrent(user *domain.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = user
	for _, ch := range a.subs {
		select {
		case ch <- UserChange{User: user}:
		default:
		}
	}
}
