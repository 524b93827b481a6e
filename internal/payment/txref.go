package payment

import "github.com/google/uuid"

// txRefAlphabet is the character set for transaction references. References
// only need to be unique per payer, not unguessable.
const txRefAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// txRefLength is the fixed length of the random part of a reference.
const txRefLength = 16

// NewTxRef generates a transaction reference: prefix, dash, then a
// fixed-length alphanumeric token derived from UUID entropy.
func NewTxRef(prefix string) string {
	id := uuid.New()

	token := make([]byte, txRefLength)
	for i := 0; i < txRefLength; i++ {
		token[i] = txRefAlphabet[int(id[i])%len(txRefAlphabet)]
	}

	if prefix == "" {
		return string(token)
	}
	return prefix + "-" + string(token)
}
