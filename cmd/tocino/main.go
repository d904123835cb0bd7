// Tocino records network animation traces from a simulated topology. It
// runs a built-in demonstration scenario and records it to a trace file, a
// TCP peer, or a SQLite database.
package main

func main() {
	Execute()
}
