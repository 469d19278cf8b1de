// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

// Command tempstore-demo runs a single synthetic transaction through
// TempStore end to end — construction, a coin transfer, gas smashing, gas
// charging, and effects production — printing the resulting effects as
// JSON. It exists to exercise the library the way the teacher's own cmd/
// binaries exercise a node: a thin CLI shell around real package code.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/datasync/eventpublish"
	"github.com/movevm/tempstore/gas"
	"github.com/movevm/tempstore/log"
	"github.com/movevm/tempstore/metrics"
	"github.com/movevm/tempstore/object"
	"github.com/movevm/tempstore/params"
	"github.com/movevm/tempstore/storage/backing"
	"github.com/movevm/tempstore/tempstore"
)

var logger = log.NewModuleLogger(log.Cmd)

var dataDirFlag = cli.StringFlag{
	Name:  "data-dir",
	Usage: "directory for the demo's backing store",
	Value: "./tempstore-demo-data",
}

var configFlag = cli.StringFlag{
	Name:  "config",
	Usage: "path to a protocol config TOML file (optional; defaults are used otherwise)",
}

var kafkaBrokersFlag = cli.StringSliceFlag{
	Name:  "kafka-broker",
	Usage: "Kafka broker address to publish the resulting event log to (repeatable; omit to skip publishing)",
}

func main() {
	app := cli.NewApp()
	app.Name = "tempstore-demo"
	app.Usage = "run a synthetic transaction through the TempStore execution engine"
	app.Flags = []cli.Flag{dataDirFlag, configFlag, kafkaBrokersFlag}
	app.Action = runDemo

	if err := app.Run(os.Args); err != nil {
		logger.Error("demo run failed", "err", err)
		os.Exit(1)
	}
}

func runDemo(c *cli.Context) error {
	cfg := params.DefaultProtocolConfig()
	if path := c.String(configFlag.Name); path != "" {
		loaded, err := params.LoadProtocolConfig(path)
		if err != nil {
			return fmt.Errorf("loading protocol config: %w", err)
		}
		cfg = loaded
	}

	kv, err := backing.OpenBadger(c.String(dataDirFlag.Name))
	if err != nil {
		return fmt.Errorf("opening backing store: %w", err)
	}
	defer kv.Close()
	store := backing.New(kv)

	sender := common.Address{0x01}
	recipient := common.Address{0x02}
	txDigest := common.TxDigest{0xAA}

	gasCoin := mustCoinObject(common.ObjectId{0x10}, sender, 10_000, 1)
	senderCoin := mustCoinObject(common.ObjectId{0x11}, sender, 5_000, 1)

	inputs := []*object.Object{gasCoin, senderCoin}
	mutableRefs := []common.ObjectRef{gasCoin.ComputeObjectReference(), senderCoin.ComputeObjectReference()}

	ts := tempstore.New(store, inputs, mutableRefs, txDigest, cfg.StorageRebateRate, cfg.Version)

	ctx := tempstore.Ctx{Sender: sender, PackageID: common.ZeroObjectId, TransactionModule: "demo"}

	transferred := *senderCoin
	transferredMove := *transferred.Data.Move
	coin, _ := object.CoinFromBytes(transferredMove.Contents)
	if err := coin.Sub(1_000); err != nil {
		return err
	}
	newContents, err := coin.ToBytes()
	if err != nil {
		return err
	}
	transferredMove.Contents = newContents
	transferred.Data.Move = &transferredMove
	transferred.Owner = object.NewAddressOwner(recipient)
	ts.ApplyObjectChanges(map[common.ObjectId]tempstore.ObjectChange{
		transferred.ID: {Ctx: ctx, Write: &transferred, WriteKind: tempstore.WriteMutate},
	})

	gasRefs := []common.ObjectRef{gasCoin.ComputeObjectReference()}
	if _, err := ts.SmashGas(sender, gasRefs); err != nil {
		return fmt.Errorf("smashing gas: %w", err)
	}

	meter := metrics.Wrap(gas.NewSimpleMeter(50_000, 1, 1))
	if err := ts.ChargeGas(sender, gasCoin.ID, meter, nil, gasRefs); err != nil {
		return fmt.Errorf("charging gas: %w", err)
	}
	metrics.ObserveSummary(meter.Summary())

	inner, effects := ts.ToEffects(nil, txDigest, nil, meter.Summary(), tempstore.ExecutionStatus{Success: true}, gasRefs, 0)

	if brokers := c.StringSlice(kafkaBrokersFlag.Name); len(brokers) > 0 {
		publisher, err := eventpublish.NewPublisher(brokers)
		if err != nil {
			return fmt.Errorf("dialing Kafka brokers: %w", err)
		}
		defer publisher.Close()
		if err := publisher.PublishEvents(txDigest, inner.Events); err != nil {
			return fmt.Errorf("publishing events: %w", err)
		}
	}

	out, err := json.MarshalIndent(effects, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func mustCoinObject(id common.ObjectId, owner common.Address, balance uint64, version common.SequenceNumber) *object.Object {
	contents, err := (&object.Coin{Balance: balance}).ToBytes()
	if err != nil {
		panic(err)
	}
	return &object.Object{
		ID:      id,
		Data:    object.Data{Kind: object.DataMove, Move: &object.MoveObject{TypeTag: object.GasCoinTypePrefix + "0x2::sui::SUI>", Contents: contents}},
		Owner:   object.NewAddressOwner(owner),
		Version: version,
	}
}
