package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("Secure Store Passphrase Generator")
	fmt.Println("===========================================")
	fmt.Println()

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("Failed to generate passphrase: %v", err)
	}
	passphrase := base64.RawURLEncoding.EncodeToString(key)

	fmt.Println("Passphrase generated successfully!")
	fmt.Println()
	fmt.Println("Add this to your .env file:")
	fmt.Println()
	fmt.Printf("SECURE_STORE_PASSPHRASE=%s\n", passphrase)
	fmt.Println()
	fmt.Println("IMPORTANT: Keep this value safe and never commit it to version control!")
	fmt.Println("===========================================")
}
