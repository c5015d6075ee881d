// Command workoutctl manages the workout log from a terminal.
package main

func main() {
	Execute()
}
