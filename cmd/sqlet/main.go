// Command sqlet is a small content store demonstrating the sqlet library:
// typed column access, blob round-trips and savepoint-scoped writes.
//
// Files are stored xz-compressed with a BLAKE3 digest; put/get verify the
// digest on the way out.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/sqlet/core/sqlet"
)

// CLI defines the command-line interface for sqlet.
var CLI struct {
	Init InitCmd `cmd:"" help:"Create the store schema"`
	Put  PutCmd  `cmd:"" help:"Store a file"`
	Get  GetCmd  `cmd:"" help:"Write a stored file to stdout"`
	List ListCmd `cmd:"" help:"List stored files"`
}

const schema = `create table if not exists files (
	id      text primary key,
	name    text,
	size    integer not null,
	digest  blob not null,
	content blob not null
)`

// InitCmd creates the schema.
type InitCmd struct {
	DB string `arg:"" help:"Database file" type:"path"`
}

func (c *InitCmd) Run() error {
	db, err := sqlet.Open(c.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Run(schema)
}

// PutCmd stores one file inside a single atomic scope.
type PutCmd struct {
	DB   string `arg:"" help:"Database file" type:"path"`
	File string `arg:"" help:"File to store" type:"existingfile"`
}

func (c *PutCmd) Run() error {
	db, err := sqlet.Open(c.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}

	digest := blake3.Sum256(data)

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	id := uuid.NewString()
	err = db.Atomic(func() error {
		return db.Run(
			"insert into files (id, name, size, digest, content) values (?, ?, ?, ?, ?)",
			id, c.File, int64(len(data)), digest[:], buf.Bytes(),
		)
	})
	if err != nil {
		return err
	}

	fmt.Println(id)
	return nil
}

// GetCmd loads a file by id, decompresses it and verifies the digest.
type GetCmd struct {
	DB string `arg:"" help:"Database file" type:"path"`
	ID string `arg:"" help:"File id"`
}

func (c *GetCmd) Run() error {
	db, err := sqlet.Open(c.DB, sqlet.OpenReadOnly)
	if err != nil {
		return err
	}
	defer db.Close()

	stmt, err := db.Execute("select digest, content from files where id = ?", c.ID)
	if err != nil {
		return err
	}
	defer stmt.Finalize()

	row, err := stmt.Step()
	if err != nil {
		return err
	}
	if !row {
		return fmt.Errorf("no file with id %s", c.ID)
	}

	digest, content, err := sqlet.Row2[sqlet.Blob[byte], []byte](stmt)
	if err != nil {
		return err
	}

	r, err := xz.NewReader(bytes.NewReader(content))
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	if got := blake3.Sum256(data); !bytes.Equal(got[:], []byte(digest)) {
		return fmt.Errorf("digest mismatch for %s", c.ID)
	}

	_, err = os.Stdout.Write(data)
	return err
}

// ListCmd prints id, name and size per stored file.
type ListCmd struct {
	DB string `arg:"" help:"Database file" type:"path"`
}

func (c *ListCmd) Run() error {
	db, err := sqlet.Open(c.DB, sqlet.OpenReadOnly)
	if err != nil {
		return err
	}
	defer db.Close()

	stmt, err := db.Execute("select id, name, size from files order by name")
	if err != nil {
		return err
	}
	defer stmt.Finalize()

	for {
		row, err := stmt.Step()
		if err != nil {
			return err
		}
		if !row {
			return nil
		}

		id, name, size, err := sqlet.Row3[string, sqlet.Null[string], int64](stmt)
		if err != nil {
			return err
		}
		label := "(unnamed)"
		if name.Valid {
			label = name.V
		}
		fmt.Printf("%s  %10d  %s\n", id, size, label)
	}
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("sqlet"),
		kong.Description("Typed SQLite access layer demo: xz-compressed, BLAKE3-verified file store"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
