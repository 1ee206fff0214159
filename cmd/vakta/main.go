// Vakta - Insider Activity Risk Engine
// Ingest. Score. Alert.
package main

func main() {
	Execute()
}
