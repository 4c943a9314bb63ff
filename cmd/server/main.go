package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/solheim-labs/sitesearch/pkg/server"
)

func main() {
	host := flag.String("host", "localhost", "Server host address")
	port := flag.Int("port", 8080, "Server port")
	corsOrigin := flag.String("cors-origin", "*", "CORS allowed origin")
	enableTLS := flag.Bool("tls", false, "Enable TLS/SSL")
	tlsCert := flag.String("tls-cert", "", "Path to TLS certificate file")
	tlsKey := flag.String("tls-key", "", "Path to TLS private key file")
	enableGraphQL := flag.Bool("graphql", false, "Enable GraphQL API endpoint (/graphql) and GraphiQL playground (/graphiql)")
	enableWebSocket := flag.Bool("websocket", false, "Enable live search-as-you-type endpoint (/search/{corpus}/live)")
	enableProfiling := flag.Bool("profile-queries", false, "Record per-stage query timings")
	seedSampleData := flag.Bool("seed", true, "Seed the courses, portfolio, and blog corpora with sample documents")
	flag.Parse()

	config := server.DefaultConfig()
	config.Host = *host
	config.Port = *port
	config.AllowedOrigins = []string{*corsOrigin}
	config.EnableTLS = *enableTLS
	config.TLSCertFile = *tlsCert
	config.TLSKeyFile = *tlsKey
	config.EnableGraphQL = *enableGraphQL
	config.EnableWebSocket = *enableWebSocket
	config.EnableProfiling = *enableProfiling

	srv, err := server.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create server: %v\n", err)
		os.Exit(1)
	}

	if *seedSampleData {
		seedSampleCorpora(srv)
	}

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// seedSampleCorpora indexes a small set of representative documents into
// each of the three demo corpora, so the search endpoints have something to
// return out of the box.
func seedSampleCorpora(srv *server.Server) {
	reg := srv.Registry()

	reg.Add("courses", "1", "Introduction to Blockchain",
		"Learn the fundamentals of blockchain technology and its applications. This course covers the basic concepts of distributed ledgers, consensus mechanisms, and smart contracts.",
		map[string]string{"category": "Blockchain", "level": "Beginner"})

	reg.Add("courses", "2", "Advanced React Development",
		"Master modern React patterns and best practices for scalable applications. Topics include component patterns, state management, performance optimization, and testing strategies.",
		map[string]string{"category": "Web Development", "level": "Advanced"})

	reg.Add("courses", "3", "Solana Development",
		"Build scalable DApps on the Solana blockchain with Rust. Learn about Solana's programming model, account structure, and how to create secure and efficient smart contracts.",
		map[string]string{"category": "Blockchain", "level": "Intermediate"})

	reg.Add("portfolio", "1", "DeFi Dashboard",
		"A comprehensive dashboard for DeFi users to track their investments across multiple protocols. Features include portfolio tracking, historical performance, yield farming analytics, and risk assessment tools.",
		map[string]string{"category": "Web3", "technology": "Solana, React, TypeScript"})

	reg.Add("portfolio", "2", "NFT Marketplace",
		"A fully-featured NFT marketplace built on Solana with trading and minting capabilities. Users can create, buy, sell, and auction digital collectibles with low transaction fees and carbon-neutral operations.",
		map[string]string{"category": "Blockchain", "technology": "Rust, Anchor, React, Solana"})

	reg.Add("blog", "1", "Getting Started with Solana Development",
		"Learn how to set up your development environment and build your first Solana program. This guide walks through installing the Solana CLI, setting up your toolchain, and creating a simple smart contract with Rust and the Anchor framework.",
		map[string]string{"category": "Development", "tags": "Solana, Rust, Blockchain, Web3"})

	reg.Add("blog", "2", "Web3 Authentication Methods Compared",
		"A comprehensive comparison of different authentication methods in Web3 applications. We examine traditional username/password systems versus wallet-based authentication, exploring security, user experience, and implementation complexity.",
		map[string]string{"category": "Security", "tags": "Authentication, Web3, Security, Wallet"})
}
