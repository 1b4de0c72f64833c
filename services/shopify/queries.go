package shopify

const productsQuery = `
query Products($first: Int!) {
  products(first: $first) {
    edges {
      node {
        id
        title
        handle
        description
        featuredImage { url altText }
        priceRange { minVariantPrice { amount currencyCode } }
        variants(first: 1) {
          edges { node { id title availableForSale price { amount currencyCode } } }
        }
      }
    }
  }
}`

const createCartMutation = `
mutation CartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart { id checkoutUrl }
    userErrors { field message }
  }
}`
