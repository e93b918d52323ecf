package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/wallet"
)

// Command represents a CLI command and its handler function
type Command struct {
	Name        string
	Description string
	Usage       string
	Handler     func(args []string) error
}

// CommandRegistry manages the available commands
type CommandRegistry struct {
	commands map[string]Command
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]Command),
	}
}

func (r *CommandRegistry) RegisterCommand(cmd Command) {
	r.commands[strings.ToLower(cmd.Name)] = cmd
}

func (r *CommandRegistry) GetCommand(name string) (Command, bool) {
	cmd, exists := r.commands[strings.ToLower(name)]
	return cmd, exists
}

// ListCommands returns the registered commands sorted by name
func (r *CommandRegistry) ListCommands() []Command {
	cmdList := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmdList = append(cmdList, cmd)
	}
	sort.Slice(cmdList, func(i, j int) bool { return cmdList[i].Name < cmdList[j].Name })
	return cmdList
}

// CLI represents the command-line interface
type CLI struct {
	registry *CommandRegistry
	reader   *bufio.Reader
	config   *wallet.Config
	// ctx carries the session token once the wallet is signed in.
	ctx context.Context
}

func NewCLI(config *wallet.Config) *CLI {
	return &CLI{
		registry: NewCommandRegistry(),
		reader:   bufio.NewReader(os.Stdin),
		config:   config,
		ctx:      context.Background(),
	}
}

// parseInput splits the input into command and arguments
func parseInput(input string) (string, []string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return "", nil
	}

	command := strings.ToLower(parts[0])
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args
}

// InitializeWallet reads the identity key and signs in to the node.
func (cli *CLI) InitializeWallet() error {
	fmt.Println("Welcome to the LoyaltyPoint Wallet CLI!")

	for {
		fmt.Print("Enter your private key: ")
		input, err := cli.reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}

		key, err := common.PrivateKeyFromHex(strings.TrimSpace(input))
		if err != nil {
			fmt.Println("Invalid key. Please enter a 32 byte hex string.")
			continue
		}
		cli.config.IdentityPrivateKey = *key
		break
	}

	token, err := wallet.AuthenticateWithServer(context.Background(), cli.config)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	cli.ctx = wallet.ContextWithToken(context.Background(), token)
	return nil
}

// Run starts the CLI loop
func (cli *CLI) Run() error {
	if err := cli.InitializeWallet(); err != nil {
		return fmt.Errorf("wallet initialization failed: %w", err)
	}

	fmt.Printf("\nConnected as %s. Ready for commands.\n", cli.config.Address().Hex())

	for {
		fmt.Print("> ")
		input, err := cli.reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}

		command, args := parseInput(strings.TrimSpace(input))
		if command == "" {
			continue
		}

		if cmd, exists := cli.registry.GetCommand(command); exists {
			if err := cmd.Handler(args); err != nil {
				fmt.Printf("Error executing command: %v\n", err)
			}
		} else {
			fmt.Println("Unknown command. Available commands:")
			cli.printCommands()
		}
	}
}

func (cli *CLI) printCommands() {
	for _, cmd := range cli.registry.ListCommands() {
		fmt.Printf("  %s - %s\n", cmd.Usage, cmd.Description)
	}
}

func parseTokenID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

func formatWei(s string) string {
	wei, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return s
	}
	return common.FormatEther(wei)
}

func (cli *CLI) registerCommands() {
	cli.registry.RegisterCommand(Command{
		Name:        "info",
		Description: "Show the collection and the registry",
		Usage:       "info",
		Handler: func(_ []string) error {
			info, err := wallet.GetCollection(cli.ctx, cli.config)
			if err != nil {
				return err
			}
			market, err := wallet.GetMarket(cli.ctx, cli.config)
			if err != nil {
				return err
			}
			fmt.Printf("Collection %s (%s) at %s\n", info.Name, info.Symbol, info.Address)
			fmt.Printf("  minted %d of %d, price %s ETH, sale active: %t\n",
				info.TokenIDCounter, info.MaxSupply, formatWei(info.MintPrice), info.SaleIsActive)
			fmt.Printf("  owner %s, balance %s ETH\n", info.Owner, formatWei(info.Balance))
			fmt.Printf("Marketplace at %s, %d listings created\n", market.Address, market.ListingIDCounter-1)
			return nil
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "mint",
		Description: "Mint tokens at the sale price",
		Usage:       "mint <quantity>",
		Handler: func(args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("please provide a quantity")
			}
			quantity, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid quantity: %w", err)
			}
			ids, err := wallet.Mint(cli.ctx, cli.config, quantity)
			if err != nil {
				return err
			}
			fmt.Printf("Minted tokens %v\n", ids)
			return nil
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "safemint",
		Description: "Mint a token to an address without paying (owner only)",
		Usage:       "safemint <to> [uri]",
		Handler: func(args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("please provide a recipient")
			}
			to, err := common.ParseAddress(args[0])
			if err != nil {
				return err
			}
			uri := ""
			if len(args) > 1 {
				uri = args[1]
			}
			id, err := wallet.SafeMint(cli.ctx, cli.config, to, uri)
			if err != nil {
				return err
			}
			fmt.Printf("Minted token %d to %s\n", id, to.Hex())
			return nil
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "flip",
		Description: "Toggle the public sale (owner only)",
		Usage:       "flip",
		Handler: func(_ []string) error {
			active, err := wallet.FlipSaleState(cli.ctx, cli.config)
			if err != nil {
				return err
			}
			fmt.Printf("Sale active: %t\n", active)
			return nil
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "withdraw",
		Description: "Withdraw the mint proceeds (owner only)",
		Usage:       "withdraw",
		Handler: func(_ []string) error {
			amount, err := wallet.Withdraw(cli.ctx, cli.config)
			if err != nil {
				return err
			}
			fmt.Printf("Withdrew %s ETH\n", common.FormatEther(amount))
			return nil
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "approve",
		Description: "Approve an address to transfer a token",
		Usage:       "approve <to> <token id>",
		Handler: func(args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("please provide an address and a token id")
			}
			to, err := common.ParseAddress(args[0])
			if err != nil {
				return err
			}
			id, err := parseTokenID(args[1])
			if err != nil {
				return err
			}
			return wallet.Approve(cli.ctx, cli.config, to, id)
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "list",
		Description: "List a token for sale, approving the marketplace first if needed",
		Usage:       "list <token id> <price in ETH>",
		Handler: func(args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("please provide a token id and a price")
			}
			id, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			price, err := common.ParseEther(args[1])
			if err != nil {
				return err
			}
			listingID, err := wallet.ListNFT(cli.ctx, cli.config, id, price)
			if err != nil {
				return err
			}
			fmt.Printf("Created listing %d\n", listingID)
			return nil
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "buy",
		Description: "Buy a listing at its price",
		Usage:       "buy <listing id>",
		Handler: func(args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("please provide a listing id")
			}
			id, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			if err := wallet.BuyItem(cli.ctx, cli.config, id); err != nil {
				return err
			}
			fmt.Printf("Bought listing %d\n", id)
			return nil
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "cancel",
		Description: "Cancel one of your listings",
		Usage:       "cancel <listing id>",
		Handler: func(args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("please provide a listing id")
			}
			id, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			return wallet.CancelListing(cli.ctx, cli.config, id)
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "listings",
		Description: "Show active listings",
		Usage:       "listings",
		Handler: func(_ []string) error {
			listings, err := wallet.FetchListings(cli.ctx, cli.config)
			if err != nil {
				return err
			}
			if len(listings) == 0 {
				fmt.Println("No active listings")
			}
			for _, listing := range listings {
				fmt.Printf("#%d token %d for %s ETH by %s\n",
					listing.ListingID, listing.TokenID, formatWei(listing.Price), listing.Seller)
			}
			return nil
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "mynfts",
		Description: "Show the tokens you own",
		Usage:       "mynfts",
		Handler: func(_ []string) error {
			nfts, err := wallet.FetchUserNFTs(cli.ctx, cli.config, cli.config.Address())
			if err != nil {
				return err
			}
			for _, nft := range nfts {
				fmt.Printf("Token %d: %s\n", nft.TokenID, nft.MetadataURL)
			}
			fmt.Printf("Total: %d\n", len(nfts))
			return nil
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "balance",
		Description: "Show your native balance",
		Usage:       "balance",
		Handler: func(_ []string) error {
			account, err := wallet.GetAccount(cli.ctx, cli.config, cli.config.Address())
			if err != nil {
				return err
			}
			fmt.Printf("Balance: %s ETH (nonce %d)\n", formatWei(account.Balance), account.Nonce)
			return nil
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "help",
		Description: "Show available commands",
		Usage:       "help",
		Handler: func(_ []string) error {
			fmt.Println("Available commands:")
			cli.printCommands()
			return nil
		},
	})

	cli.registry.RegisterCommand(Command{
		Name:        "exit",
		Description: "Exit the program",
		Usage:       "exit",
		Handler: func(_ []string) error {
			fmt.Println("Goodbye!")
			os.Exit(0)
			return nil
		},
	})
}

func main() {
	nodeAddress := flag.String("node", "localhost:8535", "gRPC address of the marketplace node")
	network := flag.String("network", "hardhat", "Network the node serves")
	certPath := flag.String("cert", "", "TLS certificate of the node")
	flag.Parse()

	n, err := common.NetworkFromString(*network)
	if err != nil {
		fmt.Printf("Invalid network: %v\n", err)
		os.Exit(1)
	}
	config := &wallet.Config{
		Network:     n,
		NodeAddress: *nodeAddress,
	}
	if *certPath != "" {
		config.CertPath = certPath
	}

	cli := NewCLI(config)
	cli.registerCommands()

	if err := cli.Run(); err != nil {
		fmt.Printf("Error running CLI: %v\n", err)
		os.Exit(1)
	}
}
