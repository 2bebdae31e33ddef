package schema

// DefaultText is the example e-commerce schema preloaded by the
// sandbox. It exercises every section of the text format.
const DefaultText = `nodes:
  - Customer
  - Order
  - Product
  - Category
edges:
  - Customer -> Order
  - Order -> Product
  - Product -> Category
  - Customer -> Product
properties:
  Customer:
    - id: string
    - name: string
    - email: string
    - join_date: date
  Order:
    - id: string
    - customer_id: string
    - order_date: date
    - total_amount: float
  Product:
    - id: string
    - name: string
    - price: float
    - category_id: string
  Category:
    - id: string
    - name: string
    - description: string
`
