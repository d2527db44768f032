package mint

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

type Configuration struct {
	Store struct {
		Dir string `toml:"dir"`
	} `toml:"store"`
	API struct {
		Listen string `toml:"listen"`
	} `toml:"api"`
	Admin struct {
		Key string `toml:"key"`
	} `toml:"admin"`
	Mint struct {
		Cap     uint64 `toml:"cap"`
		Price   string `toml:"price"`
		DawnURI string `toml:"dawn-uri"`
		DuskURI string `toml:"dusk-uri"`
	} `toml:"mint"`
}

func Setup(path string) (*Configuration, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Configuration
	err = toml.Unmarshal(f, &conf)
	if err != nil {
		return nil, err
	}
	if conf.Admin.Key == "" {
		return nil, fmt.Errorf("missing admin key in %s", path)
	}
	if conf.API.Listen == "" {
		conf.API.Listen = ":7080"
	}
	return &conf, nil
}
