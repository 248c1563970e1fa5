// Command inspect dumps the relay's Badger store as a table, read-only.
// Useful to inspect participants and the message log while the relay runs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type storedParticipant struct {
	Name         string `json:"name"`
	LastStatusMs int64  `json:"lastStatus"`
	Seq          uint64 `json:"seq"`
}

type storedMessage struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Text   string `json:"text"`
	Type   string `json:"type"`
	AtNano int64  `json:"at"`
}

func main() {
	dbPath := flag.String("db", "./data", "Path to badger DB")
	prefix := flag.String("prefix", "message:", "Prefix to scan (message: or participant:)")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	color.Green.Printf("Scanning %s with prefix %q\n\n", *dbPath, *prefix)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Time", "From", "To", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				table.Append(toRow(key, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func toRow(key string, val []byte) []string {
	var message storedMessage
	if err := json.Unmarshal(val, &message); err == nil && message.Type != "" {
		return []string{
			key,
			message.Type,
			time.Unix(0, message.AtNano).Format("15:04:05"),
			message.From,
			message.To,
			message.Text,
		}
	}

	var participant storedParticipant
	if err := json.Unmarshal(val, &participant); err == nil && participant.Name != "" {
		return []string{
			key,
			"participant",
			time.UnixMilli(participant.LastStatusMs).Format("15:04:05"),
			participant.Name,
			"",
			fmt.Sprintf("seq=%d", participant.Seq),
		}
	}

	return []string{key, "RAW", "--:--:--", "", "", fmt.Sprintf("Size: %d bytes", len(val))}
}
