package main

import (
	"context"
	"flag"
	"time"

	"loyalty/internal/catalog"
	"loyalty/internal/config"
	"loyalty/internal/db"
	"loyalty/internal/models"
	"loyalty/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func main() {
	path := flag.String("file", "catalog.yaml", "path to the store and badge catalog")
	flag.Parse()

	file, err := catalog.Load(*path)
	if err != nil {
		logrus.WithError(err).Fatal("invalid catalog")
	}

	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect database")
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	shops := store.NewShopStore(database)
	for _, s := range file.Stores {
		created, err := shops.CreateIfAbsent(ctx, models.Shop{
			ID:                 uuid.NewString(),
			Name:               s.Name,
			Address:            s.Address,
			ScanCode:           s.ScanCode,
			ExperiencePerVisit: s.Reward.Experience,
			LoyaltyPerVisit:    s.Reward.Loyalty,
			CoinsPerVisit:      s.Reward.Coins,
			GemsPerVisit:       s.Reward.Gems,
		})
		if err != nil {
			logrus.WithError(err).WithField("store", s.Name).Fatal("failed to seed store")
		}
		logrus.WithFields(logrus.Fields{"store": s.Name, "created": created}).Info("store seeded")
	}

	nfts := store.NewNftStore(database)
	for _, n := range file.Nfts {
		created, err := nfts.CreateIfAbsent(ctx, models.Nft{
			ID:          uuid.NewString(),
			Name:        n.Name,
			Description: n.Description,
			ImageURL:    n.ImageURL,
			Rarity:      n.Rarity,
			IsActive:    true,
		})
		if err != nil {
			logrus.WithError(err).WithField("nft", n.Name).Fatal("failed to seed nft")
		}
		logrus.WithFields(logrus.Fields{"nft": n.Name, "created": created}).Info("nft seeded")
	}
}
