package config

import "github.com/caarlos0/env/v11"

// ChainConfig points the fetcher at a ledger node and the five contracts
// the snapshot is built from. The defaults are the mainnet deployment.
type ChainConfig struct {
	RPCURL string `env:"RPC_URL" envDefault:"https://api.zilliqa.com/"`

	MainContract   string `env:"MAIN_CONTRACT" envDefault:"b4D83BECB950c096B001a3D1c7aBb10F571ae75f"`
	BattleContract string `env:"BATTLE_CONTRACT" envDefault:"21B870dc77921B21F9A98a732786Bf812888193c"`
	BreedContract  string `env:"BREED_CONTRACT" envDefault:"ade7886ec4a36cb0a7de2f5d18cc7bdae12e3650"`
	MarketContract string `env:"MARKET_CONTRACT" envDefault:"7b9b80aaF561Ecd4e89ea55D83d59Ab7aC01A575"`
	NamesContract  string `env:"NAMES_CONTRACT" envDefault:"0F5d8f74817E2BC5A09521149094A7860c691D42"`
}

func LoadChain() (ChainConfig, error) {
	var cfg ChainConfig
	err := env.Parse(&cfg)
	return cfg, err
}
