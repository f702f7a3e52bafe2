package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
	"msgr/internal/analytics"
	"msgr/internal/backup"
	"msgr/internal/bus"
	"msgr/internal/config"
	"msgr/internal/lock"
	"msgr/internal/logging"
	"msgr/internal/model"
	"msgr/internal/profile"
	"msgr/internal/store"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	name := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	c, err := openCtl(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer c.close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch args[0] {
	case "status":
		cmdStatus(c, *jsonFlag)
	case "conversations":
		cmdConversations(c, *jsonFlag)
	case "messages":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: msgrctl messages <thread-id> [limit]")
			os.Exit(1)
		}
		cmdMessages(c, args[1:], *jsonFlag)
	case "contacts":
		cmdContacts(c, *jsonFlag)
	case "search":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: msgrctl search <query>")
			os.Exit(1)
		}
		cmdSearch(c, strings.Join(args[1:], " "), *jsonFlag)
	case "backup":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: msgrctl backup <run|list>")
			os.Exit(1)
		}
		cmdBackup(ctx, c, args[1], *jsonFlag)
	case "restore":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: msgrctl restore <path>")
			os.Exit(1)
		}
		cmdRestore(ctx, c, args[1], *jsonFlag)
	case "analytics":
		if len(args) >= 2 && args[1] == "flush" {
			cmdAnalyticsFlush(ctx, c)
		} else {
			fmt.Fprintln(os.Stderr, "usage: msgrctl analytics flush")
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: msgrctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                    Show profile status")
	fmt.Fprintln(os.Stderr, "  conversations             List threads")
	fmt.Fprintln(os.Stderr, "  messages <id> [limit]     Show a thread's history")
	fmt.Fprintln(os.Stderr, "  contacts                  List the mirrored address book")
	fmt.Fprintln(os.Stderr, "  search <query>            Full-text search across messages")
	fmt.Fprintln(os.Stderr, "  backup run                Write an archive now")
	fmt.Fprintln(os.Stderr, "  backup list               List archives")
	fmt.Fprintln(os.Stderr, "  restore <path>            Restore an archive")
	fmt.Fprintln(os.Stderr, "  analytics flush           Deliver queued usage events")
}

// ctl bundles what the subcommands need. The profile lock is taken
// lazily, only by commands that write.
type ctl struct {
	profile string
	cfg     *config.Config
	db      *store.DB
	logger  *zap.Logger
	lk      *lock.Lock
}

func openCtl(name string) (*ctl, error) {
	if err := profile.EnsureDir(name); err != nil {
		return nil, err
	}

	logger, err := logging.New(profile.LogPath(name), name, false)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		cfg = config.Default()
	}

	db, err := store.Open(profile.DBPath(name))
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &ctl{profile: name, cfg: cfg, db: db, logger: logger}, nil
}

// acquireLock guards mutating commands against a running msgr instance.
func (c *ctl) acquireLock() {
	lk, err := lock.Acquire(profile.Dir(c.profile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintln(os.Stderr, "close msgr for this profile and retry")
		os.Exit(1)
	}
	c.lk = lk
}

func (c *ctl) close() {
	_ = c.db.Close()
	if c.lk != nil {
		_ = c.lk.Release()
	}
	_ = c.logger.Sync()
}

func (c *ctl) engine() *backup.Engine {
	b := bus.New()
	machine := backup.NewMachine(b)
	return backup.NewEngine(c.db, b, machine, profile.BackupDir(c.profile), c.cfg.Backup.Keep, c.logger)
}

func cmdStatus(c *ctl, jsonOut bool) {
	convs, err := c.db.ConversationCount()
	fail(err)
	msgs, err := c.db.MessageCount()
	fail(err)
	contacts, err := c.db.ContactCount()
	fail(err)
	lastAt, err := c.db.Meta(store.MetaLastBackupAt)
	fail(err)
	lastPath, err := c.db.Meta(store.MetaLastBackupPath)
	fail(err)
	events, err := c.db.EventCounts()
	fail(err)

	lastBackup := "never"
	if lastAt != "" {
		if ms, err := strconv.ParseInt(lastAt, 10, 64); err == nil {
			lastBackup = time.UnixMilli(ms).Format("2006-01-02 15:04:05")
		}
	}

	client := "not running"
	pid, held := lock.Holder(profile.Dir(c.profile))
	if held {
		client = fmt.Sprintf("running (pid %d)", pid)
	}

	if jsonOut {
		outputJSON(map[string]any{
			"profile":          c.profile,
			"db":               profile.DBPath(c.profile),
			"client_running":   held,
			"client_pid":       pid,
			"conversations":    convs,
			"messages":         msgs,
			"contacts":         contacts,
			"last_backup_at":   lastBackup,
			"last_backup_path": lastPath,
			"analytics_queue":  events,
		})
		return
	}

	fmt.Printf("Profile:       %s\n", c.profile)
	fmt.Printf("Store:         %s\n", profile.DBPath(c.profile))
	fmt.Printf("Client:        %s\n", client)
	fmt.Printf("Threads:       %d\n", convs)
	fmt.Printf("Messages:      %d\n", msgs)
	fmt.Printf("Contacts:      %d\n", contacts)
	fmt.Printf("Last backup:   %s\n", lastBackup)
	if lastPath != "" {
		fmt.Printf("Last archive:  %s\n", lastPath)
	}
	fmt.Printf("Events queued: %d\n", events["queued"])
}

func cmdConversations(c *ctl, jsonOut bool) {
	convs, err := c.db.Conversations()
	fail(err)

	if jsonOut {
		outputJSON(convs)
		return
	}
	if len(convs) == 0 {
		fmt.Println("No threads found.")
		return
	}

	table := newTable()
	table.SetHeader([]string{"ID", "Name", "Type", "Last Activity", "Flags", "Preview"})
	for _, conv := range convs {
		title := conv.Title()
		if title == "" {
			title = "(no members)"
		}
		var flags []string
		if conv.Pinned {
			flags = append(flags, "pinned")
		}
		if conv.Archived {
			flags = append(flags, "archived")
		}
		if conv.Unread {
			flags = append(flags, "unread")
		}
		table.Append([]string{
			strconv.FormatInt(conv.ID, 10),
			title,
			conv.TypeDescription(),
			formatMillis(conv.LastMessageAt),
			strings.Join(flags, ","),
			clip(conv.LastMessagePreview, 48),
		})
	}
	table.Render()
}

func cmdMessages(c *ctl, args []string, jsonOut bool) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid thread id %q\n", args[0])
		os.Exit(1)
	}
	limit := 50
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			limit = n
		}
	}

	conv, err := c.db.ConversationByID(id)
	fail(err)
	if conv == nil {
		fmt.Fprintf(os.Stderr, "error: thread %d not found\n", id)
		os.Exit(1)
	}

	msgs, err := c.db.Messages(id, 0, limit)
	fail(err)

	if jsonOut {
		outputJSON(msgs)
		return
	}
	if len(msgs) == 0 {
		fmt.Println("No messages in thread.")
		return
	}

	table := newTable()
	table.SetHeader([]string{"ID", "Date", "From", "Kind", "Body"})
	for _, m := range msgs {
		from := "me"
		if !m.FromMe() {
			from = m.Address
		}
		body := m.Body
		if m.Kind == model.KindMMS && body == "" {
			body = "[mms]"
		}
		table.Append([]string{
			strconv.FormatInt(m.ID, 10),
			formatMillis(m.Date),
			from,
			m.Kind,
			clip(body, 64),
		})
	}
	table.Render()
}

func cmdContacts(c *ctl, jsonOut bool) {
	contacts, err := c.db.Contacts()
	fail(err)

	if jsonOut {
		outputJSON(contacts)
		return
	}
	if len(contacts) == 0 {
		fmt.Println("No contacts found.")
		return
	}

	table := newTable()
	table.SetHeader([]string{"Name", "Numbers", "Starred"})
	for _, ct := range contacts {
		nums := make([]string, 0, len(ct.Numbers))
		for _, n := range ct.Numbers {
			nums = append(nums, fmt.Sprintf("%s (%s)", n.Address, n.Type))
		}
		starred := ""
		if ct.Starred {
			starred = "*"
		}
		table.Append([]string{ct.Name, strings.Join(nums, ", "), starred})
	}
	table.Render()
}

func cmdSearch(c *ctl, query string, jsonOut bool) {
	results, err := c.db.SearchMessages(query, 0, 50)
	fail(err)

	if jsonOut {
		outputJSON(results)
		return
	}
	if len(results) == 0 {
		fmt.Println("No matches.")
		return
	}

	table := newTable()
	table.SetHeader([]string{"Thread", "Date", "Match"})
	for _, r := range results {
		table.Append([]string{
			strconv.FormatInt(r.Message.ConversationID, 10),
			formatMillis(r.Message.Date),
			clip(r.Snippet, 72),
		})
	}
	table.Render()
}

func cmdBackup(ctx context.Context, c *ctl, subcmd string, jsonOut bool) {
	switch subcmd {
	case "run":
		c.acquireLock()
		sum, err := c.engine().Backup(ctx)
		fail(err)
		if jsonOut {
			outputJSON(sum)
			return
		}
		fmt.Printf("Archive written: %s (%d messages, %d parts)\n", sum.Path, sum.Messages, sum.Parts)
	case "list":
		infos, err := c.engine().List()
		fail(err)
		if jsonOut {
			outputJSON(infos)
			return
		}
		if len(infos) == 0 {
			fmt.Println("No archives found.")
			return
		}
		table := newTable()
		table.SetHeader([]string{"Archive", "Size", "Modified"})
		for _, info := range infos {
			table.Append([]string{
				filepath.Base(info.Path),
				strconv.FormatInt(info.Size, 10),
				info.ModTime.Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
	default:
		fmt.Fprintf(os.Stderr, "unknown backup subcommand: %s\n", subcmd)
		os.Exit(1)
	}
}

func cmdRestore(ctx context.Context, c *ctl, path string, jsonOut bool) {
	c.acquireLock()
	sum, err := c.engine().Restore(ctx, path)
	fail(err)
	if jsonOut {
		outputJSON(sum)
		return
	}
	fmt.Printf("Archive restored: %d messages, %d parts\n", sum.Messages, sum.Parts)
}

func cmdAnalyticsFlush(ctx context.Context, c *ctl) {
	c.acquireLock()
	sink := analytics.NewFileSink(profile.AnalyticsDir(c.profile))
	d := analytics.NewDispatcher(c.db, sink, c.logger)

	total := 0
	for {
		n, err := d.Flush(ctx)
		fail(err)
		if n == 0 {
			break
		}
		total += n
	}
	fmt.Printf("Delivered %d events.\n", total)
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

func formatMillis(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}

func clip(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func fail(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
