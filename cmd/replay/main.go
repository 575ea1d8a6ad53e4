package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"bbo-tracker/src/bbo"
	"bbo-tracker/src/decoder"
	"bbo-tracker/src/models"
	"bbo-tracker/src/reporters"
)

// Replays a capture file of newline-delimited market data frames through the
// decoder and the book aggregator, printing the same reports the live
// tracker would produce. Useful for checking behavior against recorded
// sessions without a network connection.
func main() {
	filePath := flag.String("file", "", "path to a newline-delimited JSON capture file")
	flag.Parse()

	if *filePath == "" {
		fmt.Println("usage: replay -file <capture file>")
		os.Exit(1)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		fmt.Printf("Error opening capture file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	aggregator := bbo.NewAggregator()
	console := reporters.NewConsole(nil)

	var frames, trades, quotes, skipped, failures int

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		frames++

		message, err := decoder.Decode(line)
		if err != nil {
			failures++
			fmt.Printf("frame %d: decode error: %v\n", frames, err)
			continue
		}

		for i := range message.Events {
			event := &message.Events[i]
			switch event.Kind {
			case models.KindTrade:
				trades++
				console.OnTrade(models.NewTradeReport(event.Trade))
			case models.KindChange:
				quotes++
				console.OnBBO(aggregator.Apply(event.Quote))
			default:
				skipped++
			}
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Printf("Error reading capture file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("replayed %d frames: %d trades, %d quotes, %d skipped, %d decode failures\n",
		frames, trades, quotes, skipped, failures)
}
