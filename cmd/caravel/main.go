// Caravel - multi-tenant Azure resource inventory
// Discover. Normalize. Persist.
package main

func main() {
	Execute()
}
