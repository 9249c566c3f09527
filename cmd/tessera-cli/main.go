// tessera-cli exercises the validation core from the command line:
// decoding raw transactions, checking them against a JSON UTXO context,
// and exporting the managed-account tree as a dot graph.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"

	"tessera.dev/node/accounts"
	"tessera.dev/node/addr"
	"tessera.dev/node/consensus"
	"tessera.dev/node/node"
)

type options struct {
	LogLevel     string `long:"loglevel" description:"Logging level: trace|debug|info|warn|error" default:"info"`
	AccountsFile string `long:"accounts" description:"Managed-account registry file (graph command)"`
	ContextFile  string `long:"context" description:"JSON validation context (check command)"`
}

type utxoEntry struct {
	Txid        string `json:"txid"`
	Vout        uint32 `json:"vout"`
	Kind        string `json:"kind"`
	Value       int64  `json:"value"`
	Roles       string `json:"roles"`
	Permanent   bool   `json:"permanent"`
	PolicyType  uint32 `json:"policy_type"`
	PolicyParam uint32 `json:"policy_param"`
	Address     string `json:"address"`
	Height      int32  `json:"height"`
	Coinbase    bool   `json:"coinbase"`
}

type checkContext struct {
	SpendHeight int32       `json:"spend_height"`
	TxHex       string      `json:"tx_hex"`
	UtxoSet     []utxoEntry `json:"utxo_set"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "tessera-cli: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] decode <tx-hex> | check | graph"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		return err
	}
	if err := node.SetLogLevels(opts.LogLevel); err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("missing command (decode, check or graph)")
	}

	switch rest[0] {
	case "decode":
		if len(rest) != 2 {
			return fmt.Errorf("decode takes exactly one tx-hex argument")
		}
		return cmdDecode(rest[1])
	case "check":
		if opts.ContextFile == "" {
			return fmt.Errorf("check requires --context")
		}
		return cmdCheck(opts.ContextFile)
	case "graph":
		if opts.AccountsFile == "" {
			return fmt.Errorf("graph requires --accounts")
		}
		return cmdGraph(opts.AccountsFile)
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func cmdDecode(txHex string) error {
	raw, err := hex.DecodeString(txHex)
	if err != nil {
		return fmt.Errorf("tx-hex: %w", err)
	}
	tx, err := consensus.ParseTx(raw)
	if err != nil {
		return err
	}

	fmt.Printf("txid: %v\n", tx.TxHash())
	fmt.Printf("version: %d\n", tx.Version)
	fmt.Printf("locktime: %d\n", tx.LockTime)
	for i := range tx.Vin {
		in := &tx.Vin[i]
		fmt.Printf("vin[%d]: %v:%d sequence=%#x\n", i, in.PrevOut.Hash, in.PrevOut.Index, in.Sequence)
	}
	for i := range tx.Vout {
		out := tx.Vout[i]
		target := addr.ExtractAddress(out.PkScript)
		switch out.Kind() {
		case consensus.OUT_COIN:
			fmt.Printf("vout[%d]: coin value=%d address=%s\n", i, out.Value(), target)
		case consensus.OUT_ROLE:
			fmt.Printf("vout[%d]: role %s address=%s\n", i, out.Roles(), target)
		case consensus.OUT_POLICY:
			fmt.Printf("vout[%d]: policy %v address=%s\n", i, out.Policy(), target)
		}
	}
	return nil
}

func cmdCheck(contextFile string) error {
	raw, err := os.ReadFile(contextFile)
	if err != nil {
		return err
	}
	var ctx checkContext
	if err := json.Unmarshal(raw, &ctx); err != nil {
		return fmt.Errorf("context: %w", err)
	}

	txRaw, err := hex.DecodeString(ctx.TxHex)
	if err != nil {
		return fmt.Errorf("tx_hex: %w", err)
	}
	tx, err := consensus.ParseTx(txRaw)
	if err != nil {
		fmt.Printf("rejected: %v\n", err)
		return nil
	}

	view := consensus.NewUtxoView()
	for i := range ctx.UtxoSet {
		op, coin, err := buildUtxo(&ctx.UtxoSet[i])
		if err != nil {
			return fmt.Errorf("utxo_set[%d]: %w", i, err)
		}
		view.AddCoin(op, coin)
	}

	pol := consensus.DefaultManagementPolicy()
	if err := consensus.CheckTransaction(tx, &pol, true); err != nil {
		fmt.Printf("rejected: %v\n", err)
		return nil
	}
	fee, err := consensus.CheckTxInputs(tx, view, ctx.SpendHeight)
	if err != nil {
		fmt.Printf("rejected: %v\n", err)
		return nil
	}
	fmt.Printf("accepted: txid=%v fee=%d\n", tx.TxHash(), fee)
	return nil
}

func buildUtxo(e *utxoEntry) (consensus.OutPoint, consensus.Coin, error) {
	hash, err := consensus.NewHashFromStr(e.Txid)
	if err != nil {
		return consensus.OutPoint{}, consensus.Coin{}, err
	}
	target, err := addr.Decode(e.Address)
	if err != nil {
		return consensus.OutPoint{}, consensus.Coin{}, err
	}
	script, err := addr.PayToAddrScript(target)
	if err != nil {
		return consensus.OutPoint{}, consensus.Coin{}, err
	}

	var out consensus.TxOut
	switch e.Kind {
	case "coin":
		out = consensus.NewCoinTxOut(consensus.Amount(e.Value), script)
	case "role":
		roles, err := consensus.ParseRoleSet(e.Roles)
		if err != nil {
			return consensus.OutPoint{}, consensus.Coin{}, err
		}
		out = consensus.NewRoleTxOut(roles, script)
	case "policy":
		out = consensus.NewPolicyTxOut(consensus.PolicyRecord{
			Permanent: e.Permanent,
			Type:      e.PolicyType,
			Param:     e.PolicyParam,
		}, script)
	default:
		return consensus.OutPoint{}, consensus.Coin{}, fmt.Errorf("unknown utxo kind %q", e.Kind)
	}

	op := consensus.OutPoint{Hash: hash, Index: e.Vout}
	return op, consensus.Coin{Out: out, Height: e.Height, IsCoinBase: e.Coinbase}, nil
}

func cmdGraph(accountsFile string) error {
	db, err := accounts.Open(accountsFile)
	if err != nil {
		return err
	}
	defer db.Close()
	fmt.Print(accounts.NewVisualization(db).Render())
	return nil
}
