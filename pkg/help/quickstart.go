package help

const QuickstartYAML = `# llm-chat-extractor Quick Start

content_kinds:
  orders: "Numbered '**Order Number:**' blocks with status, items and totals"
  products: "Numbered '**Heading**' product cards, or one card around an image"
  text: "Anything else, returned verbatim"

commands:
  extract_stdin: |
    echo "$MESSAGE" | llm-chat-extractor extract

  extract_file: |
    llm-chat-extractor extract --file reply.md --format yaml

  extract_and_record: |
    llm-chat-extractor extract --file reply.md --record --out result.json

  classify: |
    llm-chat-extractor classify --text "1. **Order Number:** ORD-1"

  batch: |
    llm-chat-extractor batch --input transcript.yaml --workers 8 --out-dir results
    llm-chat-extractor batch --input transcript.yaml --record --cache-dir .lce-cache

  diagnostics: |
    llm-chat-extractor diagnostics list --limit 20 --engine products
    llm-chat-extractor diagnostics stats
    llm-chat-extractor diagnostics runs
    llm-chat-extractor diagnostics run 3
    llm-chat-extractor diagnostics clear

  serve: |
    llm-chat-extractor serve --addr :8080
    curl -s localhost:8080/v1/extract -d '{"message": "1. **Order Number:** ORD-1"}'

transcript_format: |
  messages:
    - id: m1
      text: |
        1. **Cozy Blue**
        **Price:** $59.50
        ![Cozy Blue](http://x/img.png)

message_convention:
  - "Numbered sections: 'N. **Heading**' start a new order or product"
  - "Fields: '**Label:** value' on one line, bold and colon optional"
  - "Multi-line fields (shipping address) run until the next bold label"
  - "Order items are '-' list lines inside the Items block"
  - "Images: '![alt](url)'; plain links count only with an image extension"

defaults:
  price: 49.99
  rating: 4.5
  category: "General"
  status: "Unknown"

config:
  file: "--config llm-chat-extractor.yaml"
  env: ["LCE_DB_PATH", "LCE_LISTEN_ADDR", "LCE_LOG_LEVEL", "LCE_DEFAULT_PRICE", "LCE_DEFAULT_CATEGORY"]
  dotenv: ".env in the working directory is loaded first"

error_behavior:
  - "Extraction never fails: unparsable messages come back as kind text"
  - "Dropped segments and fallbacks are logged and, with --record, stored in SQLite"
  - "Exit codes: 0=success, 1=error reading input or writing output"
`
