package services

import "sync"

// TxIndex keeps the identifier↔gateway-id pairs of debts issued by this
// process. It is an optimization for callback resolution only: it starts
// empty after a restart and the reconciler always falls back to the store.
type TxIndex struct {
	mu           sync.RWMutex
	byIdentifier map[string]string
	byGatewayID  map[string]string
}

func NewTxIndex() *TxIndex {
	return &TxIndex{
		byIdentifier: make(map[string]string),
		byGatewayID:  make(map[string]string),
	}
}

func (i *TxIndex) Put(identifier, gatewayID string) {
	if identifier == "" || gatewayID == "" {
		return
	}
	i.mu.Lock()
	i.byIdentifier[identifier] = gatewayID
	i.byGatewayID[gatewayID] = identifier
	i.mu.Unlock()
}

// GatewayID looks up the gateway id recorded for our identifier.
func (i *TxIndex) GatewayID(identifier string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	id, ok := i.byIdentifier[identifier]
	return id, ok
}

// Identifier is the reverse lookup by gateway id.
func (i *TxIndex) Identifier(gatewayID string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	id, ok := i.byGatewayID[gatewayID]
	return id, ok
}
