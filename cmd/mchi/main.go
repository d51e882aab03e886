// mchi is a REPL for creating and poking at mmap-backed chained hash index
// files.
//
// Usage:
//
//	mchi <index-file>              Open an existing index file
//	mchi new [opts] <index-file>   Create a new index file
//	mchi config init [--global]    Write a config file with the current defaults
//
// Options for 'new' command:
//
//	--table-size     Number of buckets (default: from config/defaults)
//	--key-size       Key size in bytes
//	--max-items      Identifiers per node before overflow
//	--data-region    Data region size in bytes (accepts humanized sizes, e.g. "64MiB")
//	--hasher         "sum" (default, file-compatible) or "xxhash"
//
// Commands (in REPL):
//
//	insert <key> <id...>     Associate one or more ids with key
//	get <key>                List the ids associated with key
//	remove <key> <id>        Remove one id from key
//	stats                    Show allocator statistics
//	info                     Show the index's geometry
//	bulk <count> [prefix]    Insert count random keys with one id each
//	seq <count> [start]      Insert count sequential keys
//	bench <count>            Benchmark insert+get performance
//	help                     Show this help
//	exit / quit / q          Exit
package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"github.com/arborist-dev/mchi/pkg/fs"
	"github.com/arborist-dev/mchi/pkg/mchi"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("missing command or index file path")
	}

	switch os.Args[1] {
	case "new":
		return runNew(os.Args[2:])
	case "config":
		return runConfig(os.Args[2:])
	}

	return runOpen(os.Args[1:])
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  mchi <index-file>              Open an existing index file")
	fmt.Fprintln(os.Stderr, "  mchi new [opts] <index-file>   Create a new index file")
	fmt.Fprintln(os.Stderr, "  mchi config init [--global]    Write a config file with the current defaults")
	fmt.Fprintln(os.Stderr, "\nRun 'mchi new --help' for options when creating a new index.")
}

// runConfig implements the `mchi config` subcommand.
func runConfig(args []string) error {
	flags := pflag.NewFlagSet("config", pflag.ExitOnError)
	global := flags.Bool("global", false, "write the global config instead of the project one")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mchi config init [--global]\n\nOptions:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() != 1 || flags.Arg(0) != "init" {
		flags.Usage()
		return errors.New("mchi config only supports the \"init\" subcommand")
	}

	fsys := fs.NewReal()

	path := filepath.Join(".", ConfigFileName)
	if *global {
		path = getGlobalConfigPath()
		if path == "" {
			return errors.New("could not determine global config path")
		}
	}

	if exists, err := fsys.Exists(path); err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	} else if exists {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := WriteConfig(fsys, path, DefaultConfig()); err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", path)
	return nil
}

func runNew(args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := LoadConfig(fs.NewReal(), cwd, "")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := pflag.NewFlagSet("new", pflag.ExitOnError)

	tableSize := flags.Uint64("table-size", cfg.TableSize, "number of buckets")
	keySize := flags.Int("key-size", cfg.KeySize, "key size in bytes")
	maxItems := flags.Int("max-items", cfg.MaxItems, "identifiers per node before overflow")
	dataRegion := flags.String("data-region", humanize.IBytes(uint64(cfg.DataRegionSize)), "data region size")
	hasherName := flags.String("hasher", cfg.Hasher, `hash function: "sum" or "xxhash"`)

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mchi new [options] <index-file>\n\nOptions:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() < 1 {
		flags.Usage()
		return errors.New("missing index file path")
	}

	path := flags.Arg(0)

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("index file already exists: %s (use 'mchi %s' to open it)", path, path)
	}

	dataRegionBytes, err := humanize.ParseBytes(*dataRegion)
	if err != nil {
		return fmt.Errorf("parsing --data-region: %w", err)
	}

	var hasher mchi.Hasher
	switch strings.ToLower(*hasherName) {
	case "", "sum":
		hasher = mchi.SumHasher{}
	case "xxhash":
		hasher = mchi.XXHasher{}
	default:
		return fmt.Errorf("unknown hasher %q (want \"sum\" or \"xxhash\")", *hasherName)
	}

	opts := mchi.Options{
		Path:           path,
		TableSize:      *tableSize,
		KeySize:        *keySize,
		MaxItems:       *maxItems,
		DataRegionSize: int64(dataRegionBytes),
		Hasher:         hasher,
	}

	fmt.Printf("Creating index with:\n")
	fmt.Printf("  Path:            %s\n", path)
	fmt.Printf("  Table size:      %d buckets\n", *tableSize)
	fmt.Printf("  Key size:        %d bytes\n", *keySize)
	fmt.Printf("  Max items/node:  %d\n", *maxItems)
	fmt.Printf("  Data region:     %s\n", humanize.IBytes(dataRegionBytes))
	fmt.Printf("  Hasher:          %s\n\n", *hasherName)

	idx, err := mchi.Open(opts)
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	defer idx.Close()

	repl := &REPL{idx: idx, keySize: *keySize}
	return repl.Run()
}

func runOpen(args []string) error {
	flags := pflag.NewFlagSet("open", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mchi <index-file>")
	}

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() < 1 {
		flags.Usage()
		return errors.New("missing index file path")
	}

	path := flags.Arg(0)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("index file does not exist: %s (use 'mchi new %s' to create it)", path, path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := LoadConfig(fs.NewReal(), cwd, "")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	idx, err := mchi.Open(mchi.Options{
		Path:           path,
		TableSize:      cfg.TableSize,
		KeySize:        cfg.KeySize,
		MaxItems:       cfg.MaxItems,
		DataRegionSize: cfg.DataRegionSize,
		Hasher:         cfg.hasher(),
	})
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer idx.Close()

	repl := &REPL{idx: idx, keySize: cfg.KeySize}
	return repl.Run()
}

// REPL is the interactive command loop.
type REPL struct {
	idx     *mchi.Index
	keySize int
	liner   *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mchi_history")
}

func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("mchi - mmap-backed chained hash index CLI (key_size=%d)\n", r.keySize)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("mchi> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()
			return nil
		case "help", "?":
			r.printHelp()
		case "insert", "put":
			r.cmdInsert(args)
		case "get":
			r.cmdGet(args)
		case "remove", "del", "delete":
			r.cmdRemove(args)
		case "stats":
			r.cmdStats()
		case "info":
			r.cmdInfo()
		case "bulk":
			r.cmdBulk(args)
		case "seq":
			r.cmdSeq(args)
		case "bench":
			r.cmdBench(args)
		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()
	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"insert", "put", "get", "remove", "del", "delete",
		"stats", "info", "bulk", "seq", "bench",
		"help", "exit", "quit", "q",
	}

	var completions []string
	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}
	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  insert <key> <id...>    Associate one or more ids with key")
	fmt.Println("  get <key>               List the ids associated with key")
	fmt.Println("  remove <key> <id>       Remove one id from key")
	fmt.Println("  stats                   Show allocator statistics")
	fmt.Println("  info                    Show the index's geometry")
	fmt.Println("  bulk <count> [prefix]   Insert count random keys with one id each")
	fmt.Println("  seq <count> [start]     Insert count sequential keys")
	fmt.Println("  bench <count>           Benchmark insert+get performance")
	fmt.Println("  help                    Show this help")
	fmt.Println("  exit / quit / q         Exit")
}

func (r *REPL) cmdInsert(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: insert <key> <id...>")
		return
	}

	ids, err := parseIDs(args[1:])
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	if err := r.idx.Insert(args[0], ids); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("inserted %d id(s) into %q\n", len(ids), args[0])
}

func (r *REPL) cmdGet(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: get <key>")
		return
	}

	ids := r.idx.Get(args[0])
	if len(ids) == 0 {
		fmt.Println("(no results)")
		return
	}

	fmt.Print("[")
	for i, id := range ids {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Print(id)
	}
	fmt.Println("]")
}

func (r *REPL) cmdRemove(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: remove <key> <id>")
		return
	}

	id, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		fmt.Printf("error: invalid id: %v\n", err)
		return
	}

	if err := r.idx.Remove(args[0], uint32(id)); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Println("ok")
}

func (r *REPL) cmdStats() {
	s := r.idx.Stats()
	fmt.Printf("allocated nodes: %d\n", s.AllocatedNodes)
	fmt.Printf("free nodes:      %d\n", s.FreeNodes)
	fmt.Printf("high-water mark: %s\n", humanize.IBytes(uint64(s.HighWaterOffset)))
}

func (r *REPL) cmdInfo() {
	s := r.idx.Stats()
	fmt.Printf("table size:       %d buckets\n", s.TableSize)
	fmt.Printf("key size:         %d bytes\n", s.KeySize)
	fmt.Printf("max items/node:   %d\n", s.MaxItems)
	fmt.Printf("node size:        %d bytes\n", s.NodeSize)
	fmt.Printf("data region size: %s\n", humanize.IBytes(uint64(s.DataRegionSize)))
	fmt.Printf("file size:        %s\n", humanize.IBytes(uint64(s.FileSize)))
}

func (r *REPL) cmdBulk(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bulk <count> [prefix]")
		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("error: invalid count: %v\n", err)
		return
	}

	prefix := "key"
	if len(args) > 1 {
		prefix = args[1]
	}

	start := time.Now()
	for i := 0; i < count; i++ {
		id := randomUint32()
		key := fmt.Sprintf("%s%d", prefix, id%uint32(count+1))
		if err := r.idx.Insert(key, []uint32{id}); err != nil {
			fmt.Printf("error at %d: %v\n", i, err)
			return
		}
	}

	fmt.Printf("inserted %d entries in %s\n", count, time.Since(start))
}

func (r *REPL) cmdSeq(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: seq <count> [start]")
		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("error: invalid count: %v\n", err)
		return
	}

	start := 0
	if len(args) > 1 {
		start, err = strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("error: invalid start: %v\n", err)
			return
		}
	}

	begin := time.Now()
	for i := 0; i < count; i++ {
		key := fmt.Sprintf("key%d", start+i)
		if err := r.idx.Insert(key, []uint32{uint32(start + i)}); err != nil {
			fmt.Printf("error at %d: %v\n", i, err)
			return
		}
	}

	fmt.Printf("inserted %d sequential entries in %s\n", count, time.Since(begin))
}

func (r *REPL) cmdBench(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: bench <count>")
		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("error: invalid count: %v\n", err)
		return
	}

	keys := make([]string, count)
	for i := range keys {
		keys[i] = fmt.Sprintf("bench%d", i)
	}

	start := time.Now()
	for i, key := range keys {
		if err := r.idx.Insert(key, []uint32{uint32(i)}); err != nil {
			fmt.Printf("insert error at %d: %v\n", i, err)
			return
		}
	}
	insertElapsed := time.Since(start)

	start = time.Now()
	for _, key := range keys {
		_ = r.idx.Get(key)
	}
	getElapsed := time.Since(start)

	fmt.Printf("insert: %d ops in %s (%.0f ops/s)\n", count, insertElapsed, float64(count)/insertElapsed.Seconds())
	fmt.Printf("get:    %d ops in %s (%.0f ops/s)\n", count, getElapsed, float64(count)/getElapsed.Seconds())
}

func parseIDs(args []string) ([]uint32, error) {
	ids := make([]uint32, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", a, err)
		}
		ids = append(ids, uint32(v))
	}
	return ids, nil
}

func randomUint32() uint32 {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<32))
	if err != nil {
		return uint32(time.Now().UnixNano())
	}
	return uint32(n.Int64())
}
