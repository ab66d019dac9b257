package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/steamdb/bootstrap"
	"github.com/fulldump/steamdb/configuration"
)

var banner = `
     _                            _ _     
 ___| |_ ___  __ _ _ __ ___    __| | |__  
/ __| __/ _ \/ _' | '_ ' _ \  / _' | '_ \ 
\__ \ ||  __/ (_| | | | | | || (_| | |_) |
|___/\__\___|\__,_|_| |_| |_| \__,_|_.__/ 
                  version ` + bootstrap.VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", bootstrap.VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	start, _ := bootstrap.Bootstrap(&c)
	start()
}
