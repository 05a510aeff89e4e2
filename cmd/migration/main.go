package main

import (
	"bufio"
	"flag"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/config"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/store/sqlstore"
)

// Usage example on the command line:
// > DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 go run main.go -file=../../scripts/database.sql
func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		panic(err)
	}
	sqlDB, err := sqlstore.Open(sqlstore.Config(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBName))
	if err != nil {
		panic(err)
	}
	db := sqlx.NewDb(sqlDB, "mysql")
	defer db.Close()

	filePtr := flag.String("file", "database.sql", "the sql file to execute")
	flag.Parse()

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		panic(err)
	}
	defer readFile.Close()

	// Statements may span several lines; each ends with a semicolon.
	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	for fileScanner.Scan() {
		line := fileScanner.Text()
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			db.MustExec(builder.String())
			builder = strings.Builder{}
		}
	}
	if err := fileScanner.Err(); err != nil {
		panic(err)
	}
}
