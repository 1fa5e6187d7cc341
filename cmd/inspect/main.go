package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"pulse-lab/domain"
	"pulse-lab/services"
	"pulse-lab/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "", "Key prefix to scan, e.g. room: or rep:")
	leaderboard := flag.Bool("leaderboard", false, "Print the reputation leaderboard instead of raw keys")
	limit := flag.Int("limit", 10, "Leaderboard size, 0 for everyone")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := newTable()
	if *leaderboard {
		err = printLeaderboard(table, db, *limit)
	} else {
		err = printKeys(table, db, *prefix)
	}
	if err != nil {
		log.Fatal(err)
	}
	table.Render()
}

func newTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
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
	return table
}

func printLeaderboard(table *tablewriter.Table, db *badger.DB, limit int) error {
	reputations := storage.NewReputationRepository(db)
	activities := services.NewActivityService(logs.GetLoggerFromString("ERROR"), nil, reputations, nil)
	records, err := activities.Leaderboard(context.Background(), limit)
	if err != nil {
		return err
	}
	table.SetHeader([]string{"Rank", "User", "Points", "Level", "Streak", "Badges", "Updated"})
	for i, record := range records {
		badges := lo.Map(record.Badges, func(b domain.Badge, _ int) string { return string(b) })
		table.Append([]string{
			strconv.Itoa(i + 1),
			string(record.UserID),
			strconv.Itoa(record.Points),
			string(record.Level),
			strconv.Itoa(record.FocusStreak),
			strings.Join(badges, ", "),
			record.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return nil
}

func printKeys(table *tablewriter.Table, db *badger.DB, prefix string) error {
	table.SetHeader([]string{"Key", "Type", "Detail"})
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				kind, detail, err := storage.Describe(key, v)
				if err != nil {
					// Keep going, one bad record should not hide the rest
					detail = fmt.Sprintf("unmarshal failed: %v", err)
				}
				table.Append([]string{key, kind, detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
