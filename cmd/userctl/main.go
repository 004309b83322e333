package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"listing-manager/auth"
	"listing-manager/config"
	"listing-manager/utils"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "add":
		if len(os.Args) < 3 {
			fmt.Println("Usage: userctl add <username>")
			os.Exit(1)
		}
		addUser(os.Args[2])
	case "disable":
		if len(os.Args) < 3 {
			fmt.Println("Usage: userctl disable <username>")
			os.Exit(1)
		}
		disableUser(os.Args[2])
	case "list":
		listUsers()
	default:
		usage()
	}
}

func usage() {
	fmt.Println(`Usage: userctl [add|disable|list] <username>

add <username>       : add a dashboard operator (password prompted)
disable <username>   : comment the operator out of the users file
list                 : list operators`)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		fmt.Println("Failed reading config.yaml:", err)
		os.Exit(1)
	}
	if cfg.Auth.UserBackend != "file" {
		fmt.Printf("auth.user_backend is %q; userctl only manages the file backend.\n", cfg.Auth.UserBackend)
		os.Exit(1)
	}
	return cfg
}

func addUser(username string) {
	cfg := loadConfig()
	users, err := auth.LoadUsers(cfg.Auth.UserFile)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Println("Failed reading users file:", err)
			os.Exit(1)
		}
		users = &auth.UsersFile{Users: map[string]auth.UserInfo{}}
	}
	if _, exists := users.Users[username]; exists {
		fmt.Println("User already exists.")
		os.Exit(1)
	}
	pass, err := utils.PromptPasswordTwice()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	salt := utils.RandomHex(8)
	hash, err := auth.ApplyHashMacro(cfg.Auth.HashMacro, strings.TrimSpace(pass), username, salt, cfg.Auth.Salt)
	if err != nil {
		fmt.Println("Hashing failed:", err)
		os.Exit(1)
	}
	fmt.Print("Administrator? (y/N): ")
	var rep string
	fmt.Scanln(&rep)
	admin := rep == "y" || rep == "Y" || rep == "yes"

	users.Users[username] = auth.UserInfo{Hash: hash, Salt: salt, Admin: admin}
	if err := auth.SaveUsers(cfg.Auth.UserFile, users); err != nil {
		fmt.Println("Failed writing users file:", err)
		os.Exit(1)
	}
	fmt.Println("User added. Send SIGHUP (service reload) to pick it up.")
}

func disableUser(username string) {
	cfg := loadConfig()
	path := utils.ResolvePath(cfg.Auth.UserFile)
	lines, err := utils.ReadLines(path)
	if err != nil {
		fmt.Println("Failed reading users file:", err)
		os.Exit(1)
	}
	out, found := commentOutUser(lines, username)
	if !found {
		fmt.Println("User not found or already disabled.")
		return
	}
	if err := utils.WriteLines(path, out); err != nil {
		fmt.Println("Failed writing users file:", err)
		os.Exit(1)
	}
	fmt.Println("User commented out of the users file.")
}

// commentOutUser comments the username: block and its indented body.
func commentOutUser(lines []string, username string) ([]string, bool) {
	out := make([]string, 0, len(lines))
	found := false
	inUser := false
	userIndent := 0
	for _, l := range lines {
		trim := strings.TrimSpace(l)
		indent := len(l) - len(strings.TrimLeft(l, " \t"))
		if !inUser && trim == username+":" {
			inUser, found, userIndent = true, true, indent
			out = append(out, "# "+l)
			continue
		}
		if inUser {
			if trim != "" && indent > userIndent {
				out = append(out, "# "+l)
				continue
			}
			inUser = false
		}
		out = append(out, l)
	}
	return out, found
}

func listUsers() {
	cfg := loadConfig()
	users, err := auth.LoadUsers(cfg.Auth.UserFile)
	if err != nil {
		fmt.Println("Failed reading users file:", err)
		os.Exit(1)
	}
	names := make([]string, 0, len(users.Users))
	for u := range users.Users {
		names = append(names, u)
	}
	sort.Strings(names)
	fmt.Println("Registered users:")
	for _, u := range names {
		role := "user"
		if users.Users[u].Admin {
			role = "admin"
		}
		fmt.Printf("- %s [%s]\n", u, role)
	}
}
